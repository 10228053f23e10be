// Package store persists the course registration entities. Every method takes
// a context, runs the model validation through gorm hooks and reports failures
// as apperrors kinds.
package store

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
)

// Clock returns the current time. Tests replace it to pin "today".
type Clock func() time.Time

// Stores bundles one of each store over the same database.
type Stores struct {
	Courses         *CourseStore
	Units           *UnitStore
	Registrations   *RegistrationStore
	EmergencySheets *EmergencySheetStore
	Users           *UserStore
}

func New(db *gorm.DB, loc *time.Location, now Clock) *Stores {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Stores{
		Courses:         &CourseStore{db: db, loc: loc, now: now},
		Units:           &UnitStore{db: db},
		Registrations:   &RegistrationStore{db: db, now: now},
		EmergencySheets: &EmergencySheetStore{db: db, now: now},
		Users:           &UserStore{db: db},
	}
}

// translate maps driver errors onto apperrors kinds. constraint names the
// unique key the entity can collide on.
func translate(err error, entity, constraint string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperrors.UniquenessError{Entity: entity, Constraint: constraint}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &apperrors.UniquenessError{Entity: entity, Constraint: pgErr.ConstraintName}
		case pgerrcode.ForeignKeyViolation:
			return referenceError(entity)
		}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return referenceError(entity)
	}
	return err
}

func referenceError(entity string) error {
	return &apperrors.ValidationError{
		Entity: entity,
		Fields: validation.Errors{"reference": errors.New("referenced record does not exist")},
	}
}

// notFound turns gorm's record-not-found into apperrors.ErrNotFound.
func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity, id)
	}
	return err
}
