package models

import (
	"errors"
	"fmt"
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
	regNickname      = fields.RequiredText("Pfadiname")
	regFirstName     = fields.RequiredText("Vorname")
	regLastName      = fields.RequiredText("Nachname")
	regGender        = fields.RequiredText("Geschlecht", fields.WithChoices(GenderChoices))
	regPhoto         = fields.OptionalText("Foto")
	regStreet        = fields.RequiredText("Strasse")
	regCity          = fields.RequiredText("Ort")
	regCountry       = fields.RequiredText("Land", fields.WithChoices(CountryChoices), fields.WithDefault("CH"))
	regPhone         = fields.OptionalText("Telefon")
	regMobile        = fields.OptionalText("Natel")
	regUnitSection   = fields.RequiredText("Einheit")
	regLevel         = fields.RequiredText("Stufe", fields.WithChoices(LevelChoices))
	regNationality   = fields.RequiredText("Nationalität", fields.WithDefault("CH"))
	regFirstLanguage = fields.RequiredText("Erstsprache", fields.WithChoices(FirstLanguageChoices))
	regRailPass      = fields.RequiredText("Bahnabo", fields.WithChoices(RailPassChoices), fields.WithDefault("Keines"))
	regAHVNumber     = fields.OptionalText("AHV-Nr.")
)

// RegistrationForm describes the text fields of a registration by JSON name.
var RegistrationForm = fields.Form{
	"nickname":       regNickname,
	"first_name":     regFirstName,
	"last_name":      regLastName,
	"gender":         regGender,
	"photo":          regPhoto,
	"street":         regStreet,
	"city":           regCity,
	"country":        regCountry,
	"phone":          regPhone,
	"mobile":         regMobile,
	"unit_section":   regUnitSection,
	"level":          regLevel,
	"nationality":    regNationality,
	"first_language": regFirstLanguage,
	"rail_pass":      regRailPass,
	"ahv_number":     regAHVNumber,
}

// RegistrationFields is the personal data a participant submits.
type RegistrationFields struct {
	Nickname           string         `json:"nickname"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Gender             string         `json:"gender"`
	BirthDate          datatypes.Date `json:"birth_date"`
	Photo              *string        `json:"photo"`
	Street             string         `json:"street"`
	PostalCode         int            `json:"postal_code"`
	City               string         `json:"city"`
	Country            string         `json:"country"`
	Email              string         `json:"email"`
	Phone              *string        `json:"phone"`
	Mobile             *string        `json:"mobile"`
	UnitSection        string         `json:"unit_section"`
	Level              string         `json:"level"`
	Nationality        string         `json:"nationality"`
	FirstLanguage      string         `json:"first_language"`
	RailPass           string         `json:"rail_pass"`
	JSNumber           *int           `gorm:"column:js_number" json:"js_number"`
	AHVNumber          *string        `gorm:"column:ahv_number" json:"ahv_number"`
	Vegetarian         bool           `json:"vegetarian"`
	NoPork             bool           `json:"no_pork"`
	ConfirmationNeeded bool           `json:"confirmation_needed"`
}

// Registration links one user to one course. The received/paid timestamps
// are only ever set by staff.
type Registration struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	CourseID uint    `gorm:"uniqueIndex:uq_registrations_course_id_user_id" json:"course_id"`
	UserID   uint    `gorm:"uniqueIndex:uq_registrations_course_id_user_id" json:"user_id"`
	UnitID   uint    `json:"unit_id"`
	Course   *Course `json:"course,omitempty"`
	User     *User   `json:"user,omitempty"`
	Unit     *Unit   `json:"unit,omitempty"`

	RegistrationReceivedAt   *time.Time `json:"registration_received_at"`
	EmergencySheetReceivedAt *time.Time `json:"emergency_sheet_received_at"`
	PaidAt                   *time.Time `json:"paid_at"`

	RegistrationFields `gorm:"embedded"`

	EmergencySheet *EmergencySheet `gorm:"foreignKey:RegistrationID" json:"emergency_sheet,omitempty"`
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s %s v/o %s", r.FirstName, r.LastName, r.Nickname)
}

func (r *Registration) Normalize() {
	f := &r.RegistrationFields
	f.Nickname = regNickname.Clean(f.Nickname)
	f.FirstName = regFirstName.Clean(f.FirstName)
	f.LastName = regLastName.Clean(f.LastName)
	f.Gender = regGender.Clean(f.Gender)
	f.BirthDate = fields.Date(time.Time(f.BirthDate))
	f.Photo = fields.Optional(fields.Deref(f.Photo))
	f.Street = regStreet.Clean(f.Street)
	f.City = regCity.Clean(f.City)
	f.Country = regCountry.Clean(f.Country)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = fields.Optional(fields.Deref(f.Phone))
	f.Mobile = fields.Optional(fields.Deref(f.Mobile))
	f.UnitSection = regUnitSection.Clean(f.UnitSection)
	f.Level = regLevel.Clean(f.Level)
	f.Nationality = regNationality.Clean(f.Nationality)
	f.FirstLanguage = regFirstLanguage.Clean(f.FirstLanguage)
	f.RailPass = regRailPass.Clean(f.RailPass)
	f.AHVNumber = fields.Optional(fields.Deref(f.AHVNumber))
}

func (r *Registration) Validate() error {
	f := &r.RegistrationFields
	return validation.ValidateStruct(f,
		validation.Field(&f.Nickname, regNickname.Rules()...),
		validation.Field(&f.FirstName, regFirstName.Rules()...),
		validation.Field(&f.LastName, regLastName.Rules()...),
		validation.Field(&f.Gender, regGender.Rules()...),
		validation.Field(&f.BirthDate, fields.RequiredDate),
		validation.Field(&f.Photo, regPhoto.Rules()...),
		validation.Field(&f.Street, regStreet.Rules()...),
		validation.Field(&f.PostalCode, validation.Required.Error(fields.MsgMissing)),
		validation.Field(&f.City, regCity.Rules()...),
		validation.Field(&f.Country, regCountry.Rules()...),
		validation.Field(&f.Email, validation.Required.Error(fields.MsgMissing), is.Email),
		validation.Field(&f.Phone, regPhone.Rules()...),
		validation.Field(&f.Mobile, regMobile.Rules()...),
		validation.Field(&f.UnitSection, regUnitSection.Rules()...),
		validation.Field(&f.Level, regLevel.Rules()...),
		validation.Field(&f.Nationality, regNationality.Rules()...),
		validation.Field(&f.FirstLanguage, regFirstLanguage.Rules()...),
		validation.Field(&f.RailPass, regRailPass.Rules()...),
		validation.Field(&f.AHVNumber, regAHVNumber.Rules()...),
	)
}

func (r *Registration) BeforeSave(tx *gorm.DB) error {
	r.Normalize()
	err := r.Validate()
	if r.CourseID == 0 || r.UserID == 0 || r.UnitID == 0 {
		errs, _ := err.(validation.Errors)
		if errs == nil {
			errs = validation.Errors{}
		}
		if r.CourseID == 0 {
			errs["course_id"] = errors.New(fields.MsgMissing)
		}
		if r.UserID == 0 {
			errs["user_id"] = errors.New(fields.MsgMissing)
		}
		if r.UnitID == 0 {
			errs["unit_id"] = errors.New(fields.MsgMissing)
		}
		err = errs
	}
	return apperrors.NewValidationError("registration", RegistrationForm.Labels(), err)
}
