package handlers

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"gorm.io/datatypes"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/fields"
	"github.com/gloggi/ausbildung-api/internal/models"
	"github.com/gloggi/ausbildung-api/internal/store"
)

type CourseHandler struct {
	stores      *store.Stores
	authHandler *auth.AuthHandler
}

func NewCourseHandler(stores *store.Stores, authHandler *auth.AuthHandler) *CourseHandler {
	return &CourseHandler{stores: stores, authHandler: authHandler}
}

type CourseBody struct {
	Name                 string  `json:"name" doc:"Name of the course"`
	Slug                 string  `json:"slug" doc:"URL identifier: lowercase letters, digits and hyphens"`
	Number               *string `json:"number,omitempty" doc:"Course number, e.g. PBS ZH 123-12"`
	StartsOn             string  `json:"starts_on" format:"date" doc:"First day"`
	EndsOn               string  `json:"ends_on" format:"date" doc:"Last day"`
	RegistrationDeadline string  `json:"registration_deadline" format:"date" doc:"Last day to register (informational)"`
	LeadName             *string `json:"lead_name,omitempty" doc:"Course lead"`
	Email                *string `json:"email,omitempty" doc:"Contact e-mail"`
}

func (b CourseBody) toModel() (*models.Course, error) {
	errs := validation.Errors{}
	c := &models.Course{
		Name:                 b.Name,
		Slug:                 b.Slug,
		Number:               b.Number,
		StartsOn:             parseDate(errs, "starts_on", b.StartsOn),
		EndsOn:               parseDate(errs, "ends_on", b.EndsOn),
		RegistrationDeadline: parseDate(errs, "registration_deadline", b.RegistrationDeadline),
		LeadName:             b.LeadName,
		Email:                b.Email,
	}
	if len(errs) > 0 {
		return nil, &apperrors.ValidationError{Entity: "course", Fields: errs}
	}
	return c, nil
}

// parseDate leaves a blank value at zero so that model validation reports it
// as missing.
func parseDate(errs validation.Errors, field, value string) datatypes.Date {
	if value == "" {
		return datatypes.Date{}
	}
	d, err := fields.ParseDate(value)
	if err != nil {
		errs[field] = errors.New("must be a date (YYYY-MM-DD)")
	}
	return d
}

type CourseOutput struct {
	Body *models.Course
}

type CoursesOutput struct {
	Body []models.Course
}

func (h *CourseHandler) HandleListOpen(ctx context.Context, _ *struct{}) (*CoursesOutput, error) {
	courses, err := h.stores.Courses.Open(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return &CoursesOutput{Body: courses}, nil
}

type CourseSlugInput struct {
	Slug string `path:"slug" doc:"Course slug"`
}

func (h *CourseHandler) HandleGet(ctx context.Context, input *CourseSlugInput) (*CourseOutput, error) {
	c, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	return &CourseOutput{Body: c}, nil
}

type StaffInput struct {
	auth.AuthInput
}

func (h *CourseHandler) HandleList(ctx context.Context, input *StaffInput) (*CoursesOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	courses, err := h.stores.Courses.List(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return &CoursesOutput{Body: courses}, nil
}

type CreateCourseInput struct {
	auth.AuthInput
	Body CourseBody
}

func (h *CourseHandler) HandleCreate(ctx context.Context, input *CreateCourseInput) (*CourseOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	c, err := input.Body.toModel()
	if err != nil {
		return nil, httpError(err)
	}
	if err := h.stores.Courses.Create(ctx, c); err != nil {
		return nil, httpError(err)
	}
	return &CourseOutput{Body: c}, nil
}

type UpdateCourseInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
	Body CourseBody
}

func (h *CourseHandler) HandleUpdate(ctx context.Context, input *UpdateCourseInput) (*CourseOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	existing, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	c, err := input.Body.toModel()
	if err != nil {
		return nil, httpError(err)
	}
	c.ID = existing.ID
	if err := h.stores.Courses.Update(ctx, c); err != nil {
		return nil, httpError(err)
	}
	return &CourseOutput{Body: c}, nil
}

type StaffCourseInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
}

func (h *CourseHandler) HandleDelete(ctx context.Context, input *StaffCourseInput) (*struct{}, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	c, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	if err := h.stores.Courses.Delete(ctx, c.ID); err != nil {
		return nil, httpError(err)
	}
	return nil, nil
}

type RegistrationsOutput struct {
	Body []models.Registration
}

func (h *CourseHandler) HandleRegistrations(ctx context.Context, input *StaffCourseInput) (*RegistrationsOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	c, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	regs, err := h.stores.Courses.Registrations(ctx, c.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &RegistrationsOutput{Body: regs}, nil
}

type UsersOutput struct {
	Body []models.User
}

func (h *CourseHandler) HandleRoster(ctx context.Context, input *StaffCourseInput) (*UsersOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	c, err := h.stores.Courses.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, httpError(err)
	}
	users, err := h.stores.Courses.Roster(ctx, c.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &UsersOutput{Body: users}, nil
}
