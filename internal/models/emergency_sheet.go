package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/fields"
)

var (
	sheetContact       = fields.RequiredText("Kontaktperson")
	sheetStreet        = fields.RequiredText("Strasse")
	sheetCity          = fields.RequiredText("Ort")
	sheetCountry       = fields.RequiredText("Land", fields.WithDefault("CH"))
	sheetPhone         = fields.OptionalText("Telefon")
	sheetMobile        = fields.OptionalText("Natel")
	sheetHealthInsurer = fields.RequiredText("Krankenkasse")
	sheetDoctorName    = fields.RequiredText("Hausarzt")
	sheetDoctorStreet  = fields.RequiredText("Strasse Hausarzt")
	sheetDoctorCity    = fields.RequiredText("Ort Hausarzt")
	sheetDoctorPhone   = fields.RequiredText("Telefon Hausarzt")
	sheetTetanus       = fields.RequiredText("Starrkrampfimpfung", fields.WithHelpText("Datum der letzten Impfung"))
)

// EmergencySheetForm describes the text fields of an emergency sheet by JSON
// name.
var EmergencySheetForm = fields.Form{
	"contact":             sheetContact,
	"street":              sheetStreet,
	"city":                sheetCity,
	"country":             sheetCountry,
	"phone":               sheetPhone,
	"mobile":              sheetMobile,
	"health_insurer":      sheetHealthInsurer,
	"doctor_name":         sheetDoctorName,
	"doctor_street":       sheetDoctorStreet,
	"doctor_city":         sheetDoctorCity,
	"doctor_phone":        sheetDoctorPhone,
	"tetanus_vaccination": sheetTetanus,
}

// EmergencySheet carries the medical and emergency contact data of one
// registration. Whether it exists is what staff check for.
type EmergencySheet struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	RegistrationID uint          `gorm:"uniqueIndex" json:"registration_id"`
	Registration   *Registration `json:"-"`

	Contact    string  `json:"contact"`
	Street     string  `json:"street"`
	PostalCode int     `json:"postal_code"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	Mobile     *string `json:"mobile"`

	HealthInsurer    string `json:"health_insurer"`
	HelicopterRescue bool   `json:"helicopter_rescue"`

	DoctorName       string `json:"doctor_name"`
	DoctorStreet     string `json:"doctor_street"`
	DoctorPostalCode int    `json:"doctor_postal_code"`
	DoctorCity       string `json:"doctor_city"`
	DoctorPhone      string `json:"doctor_phone"`

	TetanusVaccination string `json:"tetanus_vaccination"`
	Medication         string `json:"medication"`
	LongTermMedication bool   `json:"long_term_medication"`
	HealthNotes        string `json:"health_notes"`
	Remarks            string `json:"remarks"`
}

func (s *EmergencySheet) Normalize() {
	s.Contact = sheetContact.Clean(s.Contact)
	s.Street = sheetStreet.Clean(s.Street)
	s.City = sheetCity.Clean(s.City)
	s.Country = sheetCountry.Clean(s.Country)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = fields.Optional(fields.Deref(s.Phone))
	s.Mobile = fields.Optional(fields.Deref(s.Mobile))
	s.HealthInsurer = sheetHealthInsurer.Clean(s.HealthInsurer)
	s.DoctorName = sheetDoctorName.Clean(s.DoctorName)
	s.DoctorStreet = sheetDoctorStreet.Clean(s.DoctorStreet)
	s.DoctorCity = sheetDoctorCity.Clean(s.DoctorCity)
	s.DoctorPhone = sheetDoctorPhone.Clean(s.DoctorPhone)
	s.TetanusVaccination = sheetTetanus.Clean(s.TetanusVaccination)
	s.Medication = strings.TrimSpace(s.Medication)
	s.HealthNotes = strings.TrimSpace(s.HealthNotes)
	s.Remarks = strings.TrimSpace(s.Remarks)
}

func (s *EmergencySheet) Validate() error {
	required := validation.Required.Error(fields.MsgMissing)
	return validation.ValidateStruct(s,
		validation.Field(&s.RegistrationID, required),
		validation.Field(&s.Contact, sheetContact.Rules()...),
		validation.Field(&s.Street, sheetStreet.Rules()...),
		validation.Field(&s.PostalCode, required),
		validation.Field(&s.City, sheetCity.Rules()...),
		validation.Field(&s.Country, sheetCountry.Rules()...),
		validation.Field(&s.Email, required, is.Email),
		validation.Field(&s.Phone, sheetPhone.Rules()...),
		validation.Field(&s.Mobile, sheetMobile.Rules()...),
		validation.Field(&s.HealthInsurer, sheetHealthInsurer.Rules()...),
		validation.Field(&s.DoctorName, sheetDoctorName.Rules()...),
		validation.Field(&s.DoctorStreet, sheetDoctorStreet.Rules()...),
		validation.Field(&s.DoctorPostalCode, required),
		validation.Field(&s.DoctorCity, sheetDoctorCity.Rules()...),
		validation.Field(&s.DoctorPhone, sheetDoctorPhone.Rules()...),
		validation.Field(&s.TetanusVaccination, sheetTetanus.Rules()...),
	)
}

func (s *EmergencySheet) BeforeSave(tx *gorm.DB) error {
	s.Normalize()
	return apperrors.NewValidationError("emergency sheet", EmergencySheetForm.Labels(), s.Validate())
}
