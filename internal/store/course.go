package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/fields"
	"github.com/gloggi/ausbildung-api/internal/models"
)

type CourseStore struct {
	db  *gorm.DB
	loc *time.Location
	now Clock
}

func (s *CourseStore) Create(ctx context.Context, c *models.Course) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
	return translate(err, "course", "slug")
}

func (s *CourseStore) Get(ctx context.Context, id uint) (*models.Course, error) {
	var c models.Course
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "course", id)
	}
	return &c, nil
}

func (s *CourseStore) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var c models.Course
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, notFound(err, "course", slug)
	}
	return &c, nil
}

// Update overwrites every column of an existing course. created_at is kept.
func (s *CourseStore) Update(ctx context.Context, c *models.Course) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Course
		if err := tx.Select("id", "created_at").First(&existing, c.ID).Error; err != nil {
			return notFound(err, "course", c.ID)
		}
		c.CreatedAt = existing.CreatedAt
		err := tx.Omit("created_at", clause.Associations).Save(c).Error
		return translate(err, "course", "slug")
	})
}

// Delete removes the course together with its registrations.
func (s *CourseStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Course{}, id)
	if res.Error != nil {
		return fmt.Errorf("db.Delete(course) -> %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("course", id)
	}
	return nil
}

func (s *CourseStore) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.WithContext(ctx).Order("starts_on, name").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("db.Find(courses) -> %w", err)
	}
	return courses, nil
}

// Open returns the courses whose registration deadline is today or later.
// It is evaluated against the clock on every call.
func (s *CourseStore) Open(ctx context.Context) ([]models.Course, error) {
	today := fields.Date(s.now().In(s.loc))
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Where("registration_deadline >= ?", today).
		Order("starts_on, name").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find(open courses) -> %w", err)
	}
	return courses, nil
}

// Registrations lists the registrations of a course with their user, unit
// and emergency sheet.
func (s *CourseStore) Registrations(ctx context.Context, courseID uint) ([]models.Registration, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Unit").
		Preload("EmergencySheet").
		Where("course_id = ?", courseID).
		Order("last_name, first_name, id").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find(registrations) -> %w", err)
	}
	return regs, nil
}

// Roster returns the users registered for a course.
func (s *CourseStore) Roster(ctx context.Context, courseID uint) ([]models.User, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.db.WithContext(ctx).
		Select("users.*").
		Joins("JOIN registrations ON registrations.user_id = users.id").
		Where("registrations.course_id = ?", courseID).
		Order("users.last_name, users.first_name, users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("db.Find(roster) -> %w", err)
	}
	return users, nil
}
