package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/models"
)

type UnitStore struct {
	db *gorm.DB
}

func (s *UnitStore) Create(ctx context.Context, u *models.Unit) error {
	return translate(s.db.WithContext(ctx).Create(u).Error, "unit", "")
}

func (s *UnitStore) Get(ctx context.Context, id uint) (*models.Unit, error) {
	var u models.Unit
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "unit", id)
	}
	return &u, nil
}

func (s *UnitStore) Update(ctx context.Context, u *models.Unit) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Unit
		if err := tx.Select("id").First(&existing, u.ID).Error; err != nil {
			return notFound(err, "unit", u.ID)
		}
		return translate(tx.Save(u).Error, "unit", "")
	})
}

// Delete removes the unit. Registrations pointing at it are removed with it.
func (s *UnitStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Unit{}, id)
	if res.Error != nil {
		return fmt.Errorf("db.Delete(unit) -> %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("unit", id)
	}
	return nil
}

func (s *UnitStore) List(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := s.db.WithContext(ctx).Order("federation, region, name").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("db.Find(units) -> %w", err)
	}
	return units, nil
}
