package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/models"
	"github.com/gloggi/ausbildung-api/internal/notifier"
	"github.com/gloggi/ausbildung-api/internal/store"
)

type RegistrationHandler struct {
	stores      *store.Stores
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

// NewRegistrationHandler wires the registration endpoints. notifier may be
// nil.
func NewRegistrationHandler(stores *store.Stores, notifier notifier.Notifier, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{stores: stores, notifier: notifier, authHandler: authHandler}
}

type RegistrationBody struct {
	UnitID             uint    `json:"unit_id" doc:"Scout unit of the participant"`
	Nickname           string  `json:"nickname" doc:"Scout name"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Gender             string  `json:"gender" doc:"1 = male, 2 = female"`
	BirthDate          string  `json:"birth_date" format:"date"`
	Photo              *string `json:"photo,omitempty" doc:"Path of an uploaded portrait"`
	Street             string  `json:"street"`
	PostalCode         int     `json:"postal_code"`
	City               string  `json:"city"`
	Country            *string `json:"country,omitempty" doc:"Two-letter code, defaults to CH when omitted"`
	Email              string  `json:"email" format:"email"`
	Phone              *string `json:"phone,omitempty"`
	Mobile             *string `json:"mobile,omitempty"`
	UnitSection        string  `json:"unit_section" doc:"Section within the unit"`
	Level              string  `json:"level" doc:"Age level: biber, wolf, pfadi, pio or rover"`
	Nationality        *string `json:"nationality,omitempty" doc:"Defaults to CH when omitted"`
	FirstLanguage      string  `json:"first_language" doc:"D, F, I or E"`
	RailPass           *string `json:"rail_pass,omitempty" doc:"Keines, GA, Halbtax, Regenbogen or Gleis 7, defaults to Keines when omitted"`
	JSNumber           *int    `json:"js_number,omitempty" doc:"J+S personal number"`
	AHVNumber          *string `json:"ahv_number,omitempty" doc:"Social security number"`
	Vegetarian         bool    `json:"vegetarian,omitempty"`
	NoPork             bool    `json:"no_pork,omitempty"`
	ConfirmationNeeded bool    `json:"confirmation_needed,omitempty" doc:"Participant needs a course confirmation for school or work"`
}

func (b RegistrationBody) toModel() (*models.Registration, error) {
	errs := validation.Errors{}
	r := &models.Registration{
		UnitID: b.UnitID,
		RegistrationFields: models.RegistrationFields{
			Nickname:           b.Nickname,
			FirstName:          b.FirstName,
			LastName:           b.LastName,
			Gender:             b.Gender,
			BirthDate:          parseDate(errs, "birth_date", b.BirthDate),
			Photo:              b.Photo,
			Street:             b.Street,
			PostalCode:         b.PostalCode,
			City:               b.City,
			Country:            models.RegistrationForm.Resolve("country", b.Country),
			Email:              b.Email,
			Phone:              b.Phone,
			Mobile:             b.Mobile,
			UnitSection:        b.UnitSection,
			Level:              b.Level,
			Nationality:        models.RegistrationForm.Resolve("nationality", b.Nationality),
			FirstLanguage:      b.FirstLanguage,
			RailPass:           models.RegistrationForm.Resolve("rail_pass", b.RailPass),
			JSNumber:           b.JSNumber,
			AHVNumber:          b.AHVNumber,
			Vegetarian:         b.Vegetarian,
			NoPork:             b.NoPork,
			ConfirmationNeeded: b.ConfirmationNeeded,
		},
	}
	if len(errs) > 0 {
		return nil, &apperrors.ValidationError{Entity: "registration", Fields: errs}
	}
	return r, nil
}

type RegistrationOutput struct {
	Body *models.Registration
}

type RegisterInput struct {
	auth.AuthInput
	Slug string `path:"slug" doc:"Course slug"`
	Body RegistrationBody
}

// HandleRegister signs the current user up for a course. Staff get a Discord
// message for every new registration.
func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterInput) (*RegistrationOutput, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	course, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	reg, err := input.Body.toModel()
	if err != nil {
		return nil, httpError(err)
	}
	reg.CourseID = course.ID
	reg.UserID = user.ID
	if err := h.stores.Registrations.Create(ctx, reg, &user.ID); err != nil {
		return nil, httpError(err)
	}

	if h.notifier != nil {
		// Failures are logged by the notifier and never fail the request.
		_ = h.notifier.NotifyRegistration(*user, *course, *reg)
	}

	full, err := h.stores.Registrations.Get(ctx, reg.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RegistrationOutput{Body: full}, nil
}

func (h *RegistrationHandler) HandleMine(ctx context.Context, input *auth.AuthInput) (*RegistrationsOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	regs, err := h.stores.Registrations.ListByUser(ctx, userID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RegistrationsOutput{Body: regs}, nil
}

type RegistrationIDInput struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Registration ID"`
}

// load returns the registration if the caller owns it or is staff.
func (h *RegistrationHandler) load(ctx context.Context, cookie string, id uint) (*models.User, *models.Registration, error) {
	user, err := h.authHandler.CurrentUser(ctx, cookie)
	if err != nil {
		return nil, nil, err
	}
	reg, err := h.stores.Registrations.Get(ctx, id)
	if err != nil {
		return nil, nil, httpError(err)
	}
	if reg.UserID != user.ID && !user.IsStaff {
		return nil, nil, huma.Error403Forbidden("Access denied")
	}
	return user, reg, nil
}

func (h *RegistrationHandler) HandleGet(ctx context.Context, input *RegistrationIDInput) (*RegistrationOutput, error) {
	_, reg, err := h.load(ctx, input.Cookie, input.ID)
	if err != nil {
		return nil, err
	}
	return &RegistrationOutput{Body: reg}, nil
}

type UpdateRegistrationInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body RegistrationBody
}

func (h *RegistrationHandler) HandleUpdate(ctx context.Context, input *UpdateRegistrationInput) (*RegistrationOutput, error) {
	user, _, err := h.load(ctx, input.Cookie, input.ID)
	if err != nil {
		return nil, err
	}
	reg, err := input.Body.toModel()
	if err != nil {
		return nil, httpError(err)
	}
	reg.ID = input.ID
	if err := h.stores.Registrations.Update(ctx, reg, &user.ID); err != nil {
		return nil, httpError(err)
	}
	updated, err := h.stores.Registrations.Get(ctx, reg.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RegistrationOutput{Body: updated}, nil
}

func (h *RegistrationHandler) HandleDelete(ctx context.Context, input *RegistrationIDInput) (*struct{}, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if err := h.stores.Registrations.Delete(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return nil, nil
}

type MarkInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Received bool `json:"received" doc:"Set or clear the mark"`
	}
}

type markFunc func(ctx context.Context, id uint, set bool, authorID *uint) (*models.Registration, error)

func (h *RegistrationHandler) mark(ctx context.Context, input *MarkInput, fn markFunc) (*RegistrationOutput, error) {
	staff, err := h.authHandler.RequireStaff(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	reg, err := fn(ctx, input.ID, input.Body.Received, &staff.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RegistrationOutput{Body: reg}, nil
}

func (h *RegistrationHandler) HandleMarkReceived(ctx context.Context, input *MarkInput) (*RegistrationOutput, error) {
	return h.mark(ctx, input, h.stores.Registrations.MarkRegistrationReceived)
}

func (h *RegistrationHandler) HandleMarkEmergencySheetReceived(ctx context.Context, input *MarkInput) (*RegistrationOutput, error) {
	return h.mark(ctx, input, h.stores.Registrations.MarkEmergencySheetReceived)
}

func (h *RegistrationHandler) HandleMarkPaid(ctx context.Context, input *MarkInput) (*RegistrationOutput, error) {
	return h.mark(ctx, input, h.stores.Registrations.MarkPaid)
}

type RevisionsOutput struct {
	Body []models.RegistrationRevision
}

func (h *RegistrationHandler) HandleRevisions(ctx context.Context, input *RegistrationIDInput) (*RevisionsOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	revs, err := h.stores.Registrations.Revisions(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RevisionsOutput{Body: revs}, nil
}
