package handlers

import (
	"context"

	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/models"
)

type EmergencySheetBody struct {
	Contact            string  `json:"contact" doc:"Emergency contact person"`
	Street             string  `json:"street"`
	PostalCode         int     `json:"postal_code"`
	City               string  `json:"city"`
	Country            *string `json:"country,omitempty" doc:"Defaults to CH when omitted"`
	Email              string  `json:"email" format:"email"`
	Phone              *string `json:"phone,omitempty"`
	Mobile             *string `json:"mobile,omitempty"`
	HealthInsurer      string  `json:"health_insurer"`
	HelicopterRescue   bool    `json:"helicopter_rescue,omitempty" doc:"Member of the Swiss air rescue"`
	DoctorName         string  `json:"doctor_name"`
	DoctorStreet       string  `json:"doctor_street"`
	DoctorPostalCode   int     `json:"doctor_postal_code"`
	DoctorCity         string  `json:"doctor_city"`
	DoctorPhone        string  `json:"doctor_phone"`
	TetanusVaccination string  `json:"tetanus_vaccination" doc:"Date of the last tetanus shot"`
	Medication         string  `json:"medication,omitempty"`
	LongTermMedication bool    `json:"long_term_medication,omitempty"`
	HealthNotes        string  `json:"health_notes,omitempty"`
	Remarks            string  `json:"remarks,omitempty"`
}

func (b EmergencySheetBody) toModel(registrationID uint) *models.EmergencySheet {
	return &models.EmergencySheet{
		RegistrationID:     registrationID,
		Contact:            b.Contact,
		Street:             b.Street,
		PostalCode:         b.PostalCode,
		City:               b.City,
		Country:            models.EmergencySheetForm.Resolve("country", b.Country),
		Email:              b.Email,
		Phone:              b.Phone,
		Mobile:             b.Mobile,
		HealthInsurer:      b.HealthInsurer,
		HelicopterRescue:   b.HelicopterRescue,
		DoctorName:         b.DoctorName,
		DoctorStreet:       b.DoctorStreet,
		DoctorPostalCode:   b.DoctorPostalCode,
		DoctorCity:         b.DoctorCity,
		DoctorPhone:        b.DoctorPhone,
		TetanusVaccination: b.TetanusVaccination,
		Medication:         b.Medication,
		LongTermMedication: b.LongTermMedication,
		HealthNotes:        b.HealthNotes,
		Remarks:            b.Remarks,
	}
}

type EmergencySheetOutput struct {
	Body *models.EmergencySheet
}

type EmergencySheetInput struct {
	auth.AuthInput
	ID   uint `path:"id" doc:"Registration ID"`
	Body EmergencySheetBody
}

func (h *RegistrationHandler) HandleCreateEmergencySheet(ctx context.Context, input *EmergencySheetInput) (*EmergencySheetOutput, error) {
	_, reg, err := h.load(ctx, input.Cookie, input.ID)
	if err != nil {
		return nil, err
	}
	sheet := input.Body.toModel(reg.ID)
	if err := h.stores.EmergencySheets.Create(ctx, sheet); err != nil {
		return nil, httpError(err)
	}
	if h.notifier != nil {
		_ = h.notifier.NotifyEmergencySheet(*reg)
	}
	return &EmergencySheetOutput{Body: sheet}, nil
}

func (h *RegistrationHandler) HandleGetEmergencySheet(ctx context.Context, input *RegistrationIDInput) (*EmergencySheetOutput, error) {
	if _, _, err := h.load(ctx, input.Cookie, input.ID); err != nil {
		return nil, err
	}
	sheet, err := h.stores.EmergencySheets.GetByRegistration(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &EmergencySheetOutput{Body: sheet}, nil
}

func (h *RegistrationHandler) HandleUpdateEmergencySheet(ctx context.Context, input *EmergencySheetInput) (*EmergencySheetOutput, error) {
	if _, _, err := h.load(ctx, input.Cookie, input.ID); err != nil {
		return nil, err
	}
	existing, err := h.stores.EmergencySheets.GetByRegistration(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	sheet := input.Body.toModel(input.ID)
	sheet.ID = existing.ID
	if err := h.stores.EmergencySheets.Update(ctx, sheet); err != nil {
		return nil, httpError(err)
	}
	return &EmergencySheetOutput{Body: sheet}, nil
}

func (h *RegistrationHandler) HandleDeleteEmergencySheet(ctx context.Context, input *RegistrationIDInput) (*struct{}, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	existing, err := h.stores.EmergencySheets.GetByRegistration(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	if err := h.stores.EmergencySheets.Delete(ctx, existing.ID); err != nil {
		return nil, httpError(err)
	}
	return nil, nil
}
