package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/models"
)

const registrationUnique = "course_id, user_id"

// Staff-only timestamps on a registration.
const (
	RegistrationReceived   = "registration_received_at"
	EmergencySheetReceived = "emergency_sheet_received_at"
	Paid                   = "paid_at"
)

type RegistrationStore struct {
	db  *gorm.DB
	now Clock
}

// Create inserts a registration and its first revision. A second
// registration of the same user for the same course is a uniqueness
// violation.
func (s *RegistrationStore) Create(ctx context.Context, r *models.Registration, authorID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
			return translate(err, "registration", registrationUnique)
		}
		return s.revise(tx, r, authorID, "created")
	})
}

func (s *RegistrationStore) Get(ctx context.Context, id uint) (*models.Registration, error) {
	var r models.Registration
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("User").
		Preload("Unit").
		Preload("EmergencySheet").
		First(&r, id).Error
	if err != nil {
		return nil, notFound(err, "registration", id)
	}
	return &r, nil
}

// Update replaces the submitted fields and the unit of an existing
// registration. Course, user and the staff timestamps stay as they are.
func (s *RegistrationStore) Update(ctx context.Context, r *models.Registration, authorID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Registration
		if err := tx.First(&existing, r.ID).Error; err != nil {
			return notFound(err, "registration", r.ID)
		}
		existing.UnitID = r.UnitID
		existing.RegistrationFields = r.RegistrationFields
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return translate(err, "registration", registrationUnique)
		}
		*r = existing
		return s.revise(tx, r, authorID, "updated")
	})
}

func (s *RegistrationStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Registration{}, id)
	if res.Error != nil {
		return fmt.Errorf("db.Delete(registration) -> %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("registration", id)
	}
	return nil
}

// ListByUser returns every registration of a user. Staff list the
// registrations of a course through CourseStore.Registrations.
func (s *RegistrationStore) ListByUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Unit").
		Preload("EmergencySheet").
		Where("user_id = ?", userID).
		Order("id").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find(registrations) -> %w", err)
	}
	return regs, nil
}

func (s *RegistrationStore) MarkRegistrationReceived(ctx context.Context, id uint, received bool, authorID *uint) (*models.Registration, error) {
	return s.mark(ctx, id, RegistrationReceived, received, authorID)
}

func (s *RegistrationStore) MarkEmergencySheetReceived(ctx context.Context, id uint, received bool, authorID *uint) (*models.Registration, error) {
	return s.mark(ctx, id, EmergencySheetReceived, received, authorID)
}

func (s *RegistrationStore) MarkPaid(ctx context.Context, id uint, paid bool, authorID *uint) (*models.Registration, error) {
	return s.mark(ctx, id, Paid, paid, authorID)
}

// mark sets column to now, or clears it. Validation hooks are skipped since
// only the timestamp changes.
func (s *RegistrationStore) mark(ctx context.Context, id uint, column string, set bool, authorID *uint) (*models.Registration, error) {
	var value *time.Time
	comment := column + " cleared"
	if set {
		now := s.now().UTC()
		value = &now
		comment = column + " set"
	}

	var r models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Registration{}).Where("id = ?", id).UpdateColumn(column, value)
		if res.Error != nil {
			return fmt.Errorf("tx.UpdateColumn(%s) -> %w", column, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("registration", id)
		}
		if err := tx.First(&r, id).Error; err != nil {
			return err
		}
		return s.revise(tx, &r, authorID, comment)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RegistrationStore) Revisions(ctx context.Context, registrationID uint) ([]models.RegistrationRevision, error) {
	var revs []models.RegistrationRevision
	err := s.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("id").
		Find(&revs).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find(revisions) -> %w", err)
	}
	return revs, nil
}

// revise stores a snapshot of r. It must run inside the transaction that
// changed r.
func (s *RegistrationStore) revise(tx *gorm.DB, r *models.Registration, authorID *uint, comment string) error {
	snapshot := *r
	snapshot.Course, snapshot.User, snapshot.Unit, snapshot.EmergencySheet = nil, nil, nil, nil
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("json.Marshal(registration) -> %w", err)
	}
	rev := models.RegistrationRevision{
		RegistrationID: r.ID,
		AuthorID:       authorID,
		Comment:        comment,
		Snapshot:       data,
		CreatedAt:      s.now().UTC(),
	}
	if err := tx.Create(&rev).Error; err != nil {
		return fmt.Errorf("tx.Create(revision) -> %w", err)
	}
	return nil
}
