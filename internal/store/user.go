package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/models"
)

type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

// UpsertBySubject creates or refreshes the user behind a login. Profile
// fields come from the provider; staff status is only ever granted here,
// never revoked.
func (s *UserStore) UpsertBySubject(ctx context.Context, in *models.User) error {
	if in.Subject == "" {
		return errors.New("user subject is empty")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.FirstOrInit(&u, models.User{Subject: in.Subject}).Error; err != nil {
			return fmt.Errorf("tx.FirstOrInit(user) -> %w", err)
		}
		u.Username = in.Username
		u.Email = in.Email
		u.FirstName = in.FirstName
		u.LastName = in.LastName
		u.IsStaff = u.IsStaff || in.IsStaff
		if err := tx.Save(&u).Error; err != nil {
			return translate(err, "user", "subject")
		}
		*in = u
		return nil
	})
}
