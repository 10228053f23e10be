package handlers

import (
	"context"

	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/models"
	"github.com/gloggi/ausbildung-api/internal/store"
)

type UnitHandler struct {
	stores      *store.Stores
	authHandler *auth.AuthHandler
}

func NewUnitHandler(stores *store.Stores, authHandler *auth.AuthHandler) *UnitHandler {
	return &UnitHandler{stores: stores, authHandler: authHandler}
}

type UnitBody struct {
	Federation *string `json:"federation,omitempty" doc:"Cantonal federation, defaults to ZH when omitted"`
	Region     string  `json:"region" doc:"Region or corps"`
	Name       string  `json:"name" doc:"Unit name"`
}

func (b UnitBody) toModel(id uint) *models.Unit {
	return &models.Unit{
		ID:         id,
		Federation: models.UnitForm.Resolve("federation", b.Federation),
		Region:     b.Region,
		Name:       b.Name,
	}
}

type UnitOutput struct {
	Body *models.Unit
}

type UnitsOutput struct {
	Body []models.Unit
}

// HandleList is open to every signed-in user; participants pick their unit
// from it.
func (h *UnitHandler) HandleList(ctx context.Context, input *auth.AuthInput) (*UnitsOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	units, err := h.stores.Units.List(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return &UnitsOutput{Body: units}, nil
}

type UnitIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *UnitHandler) HandleGet(ctx context.Context, input *UnitIDInput) (*UnitOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	u, err := h.stores.Units.Get(ctx, input.ID)
	if err != nil {
		return nil, httpError(err)
	}
	return &UnitOutput{Body: u}, nil
}

type CreateUnitInput struct {
	auth.AuthInput
	Body UnitBody
}

func (h *UnitHandler) HandleCreate(ctx context.Context, input *CreateUnitInput) (*UnitOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	u := input.Body.toModel(0)
	if err := h.stores.Units.Create(ctx, u); err != nil {
		return nil, httpError(err)
	}
	return &UnitOutput{Body: u}, nil
}

type UpdateUnitInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body UnitBody
}

func (h *UnitHandler) HandleUpdate(ctx context.Context, input *UpdateUnitInput) (*UnitOutput, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	u := input.Body.toModel(input.ID)
	if err := h.stores.Units.Update(ctx, u); err != nil {
		return nil, httpError(err)
	}
	return &UnitOutput{Body: u}, nil
}

func (h *UnitHandler) HandleDelete(ctx context.Context, input *UnitIDInput) (*struct{}, error) {
	if _, err := h.authHandler.RequireStaff(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if err := h.stores.Units.Delete(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return nil, nil
}
