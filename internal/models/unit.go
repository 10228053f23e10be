package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/fields"
)

var (
	unitFederation = fields.RequiredText("Kantonalverband", fields.WithDefault("ZH"))
	unitRegion     = fields.RequiredText("Region / Korps")
	unitName       = fields.RequiredText("Abteilungsname")
)

// UnitForm describes the text fields of a unit by JSON name.
var UnitForm = fields.Form{
	"federation": unitFederation,
	"region":     unitRegion,
	"name":       unitName,
}

// Unit is the scout group ("Abteilung") a participant belongs to.
type Unit struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Federation string `json:"federation"`
	Region     string `json:"region"`
	Name       string `json:"name"`
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s - %s", u.Region, u.Name)
}

func (u *Unit) Normalize() {
	u.Federation = unitFederation.Clean(u.Federation)
	u.Region = unitRegion.Clean(u.Region)
	u.Name = unitName.Clean(u.Name)
}

func (u *Unit) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Federation, unitFederation.Rules()...),
		validation.Field(&u.Region, unitRegion.Rules()...),
		validation.Field(&u.Name, unitName.Rules()...),
	)
}

func (u *Unit) BeforeSave(tx *gorm.DB) error {
	u.Normalize()
	return apperrors.NewValidationError("unit", UnitForm.Labels(), u.Validate())
}
