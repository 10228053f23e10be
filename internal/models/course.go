package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/fields"
)

var (
	courseName   = fields.RequiredText("Name")
	courseNumber = fields.OptionalText("Kursnummer", fields.WithHelpText("z.Bsp PBS ZH 123-12"))
	courseLead   = fields.OptionalText("Hauptleiter")

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// CourseForm describes the text fields of a course by JSON name.
var CourseForm = fields.Form{
	"name":      courseName,
	"number":    courseNumber,
	"lead_name": courseLead,
}

// Course is an offered course. The registration deadline is informational;
// nothing refuses a registration after it has passed.
type Course struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `json:"name"`
	Slug                 string         `gorm:"uniqueIndex" json:"slug"`
	Number               *string        `json:"number"`
	StartsOn             datatypes.Date `json:"starts_on"`
	EndsOn               datatypes.Date `json:"ends_on"`
	RegistrationDeadline datatypes.Date `json:"registration_deadline"`
	LeadName             *string        `json:"lead_name"`
	Email                *string        `json:"email"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	Registrations []Registration `gorm:"foreignKey:CourseID" json:"-"`
}

func (c *Course) String() string {
	return c.Name
}

// Normalize trims text and truncates the dates to calendar days.
func (c *Course) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	c.Number = fields.Optional(fields.Deref(c.Number))
	c.LeadName = fields.Optional(fields.Deref(c.LeadName))
	c.Email = fields.Optional(fields.Deref(c.Email))
	c.StartsOn = fields.Date(time.Time(c.StartsOn))
	c.EndsOn = fields.Date(time.Time(c.EndsOn))
	c.RegistrationDeadline = fields.Date(time.Time(c.RegistrationDeadline))
}

func (c *Course) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, courseName.Rules()...),
		validation.Field(&c.Slug,
			validation.Required.Error(fields.MsgMissing),
			validation.Length(1, 50),
			validation.Match(slugPattern).Error("must contain only lowercase letters, digits and hyphens"),
		),
		validation.Field(&c.Number, courseNumber.Rules()...),
		validation.Field(&c.StartsOn, fields.RequiredDate),
		validation.Field(&c.EndsOn, fields.RequiredDate, validation.By(c.endsAfterStart)),
		validation.Field(&c.RegistrationDeadline, fields.RequiredDate),
		validation.Field(&c.LeadName, courseLead.Rules()...),
		validation.Field(&c.Email, is.Email),
	)
}

func (c *Course) endsAfterStart(interface{}) error {
	start, end := time.Time(c.StartsOn), time.Time(c.EndsOn)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return errors.New("must not be before the start date")
	}
	return nil
}

func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.Normalize()
	return apperrors.NewValidationError("course", CourseForm.Labels(), c.Validate())
}
