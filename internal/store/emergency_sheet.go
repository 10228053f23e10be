package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/models"
)

type EmergencySheetStore struct {
	db  *gorm.DB
	now Clock
}

// Create stores the one emergency sheet of a registration and stamps the
// registration's emergency_sheet_received_at unless staff already did.
func (s *EmergencySheetStore) Create(ctx context.Context, sheet *models.EmergencySheet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.Select("id").First(&reg, sheet.RegistrationID).Error; err != nil {
			return notFound(err, "registration", sheet.RegistrationID)
		}
		if err := tx.Omit(clause.Associations).Create(sheet).Error; err != nil {
			return translate(err, "emergency sheet", "registration_id")
		}
		err := tx.Model(&models.Registration{}).
			Where("id = ? AND emergency_sheet_received_at IS NULL", sheet.RegistrationID).
			UpdateColumn("emergency_sheet_received_at", s.now().UTC()).Error
		if err != nil {
			return fmt.Errorf("tx.UpdateColumn(emergency_sheet_received_at) -> %w", err)
		}
		return nil
	})
}

func (s *EmergencySheetStore) Get(ctx context.Context, id uint) (*models.EmergencySheet, error) {
	var sheet models.EmergencySheet
	if err := s.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return nil, notFound(err, "emergency sheet", id)
	}
	return &sheet, nil
}

func (s *EmergencySheetStore) GetByRegistration(ctx context.Context, registrationID uint) (*models.EmergencySheet, error) {
	var sheet models.EmergencySheet
	err := s.db.WithContext(ctx).Where("registration_id = ?", registrationID).First(&sheet).Error
	if err != nil {
		return nil, notFound(err, "emergency sheet for registration", registrationID)
	}
	return &sheet, nil
}

// Update overwrites the sheet. It stays attached to the same registration.
func (s *EmergencySheetStore) Update(ctx context.Context, sheet *models.EmergencySheet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.EmergencySheet
		if err := tx.Select("id", "registration_id").First(&existing, sheet.ID).Error; err != nil {
			return notFound(err, "emergency sheet", sheet.ID)
		}
		sheet.RegistrationID = existing.RegistrationID
		err := tx.Omit(clause.Associations).Save(sheet).Error
		return translate(err, "emergency sheet", "registration_id")
	})
}

// Delete removes the sheet and clears emergency_sheet_received_at on its
// registration. Staff who hold a paper sheet mark it received again.
func (s *EmergencySheetStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sheet models.EmergencySheet
		if err := tx.Select("id", "registration_id").First(&sheet, id).Error; err != nil {
			return notFound(err, "emergency sheet", id)
		}
		res := tx.Delete(&models.EmergencySheet{}, id)
		if res.Error != nil {
			return fmt.Errorf("tx.Delete(emergency sheet) -> %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("emergency sheet", id)
		}
		err := tx.Model(&models.Registration{}).
			Where("id = ?", sheet.RegistrationID).
			UpdateColumn("emergency_sheet_received_at", nil).Error
		if err != nil {
			return fmt.Errorf("tx.UpdateColumn(emergency_sheet_received_at) -> %w", err)
		}
		return nil
	})
}
