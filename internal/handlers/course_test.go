package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloggi/ausbildung-api/internal/auth"
)

func TestCourseLifecycle(t *testing.T) {
	env := setup(t)
	staff := env.user(t, "staff", true)
	member := env.user(t, "member", false)
	h := env.handlers.Courses

	_, err := h.HandleCreate(as(member), &CreateCourseInput{Body: courseBody("Basiskurs", "bk-2024", "2024-06-01")})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = h.HandleCreate(context.Background(), &CreateCourseInput{Body: courseBody("Basiskurs", "bk-2024", "2024-06-01")})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	resp, err := h.HandleCreate(as(staff), &CreateCourseInput{Body: courseBody("Basiskurs", "bk-2024", "2024-06-01")})
	require.NoError(t, err)
	assert.NotZero(t, resp.Body.ID)

	_, err = h.HandleCreate(as(staff), &CreateCourseInput{Body: courseBody("Aufbaukurs", "bk-2024", "2024-06-01")})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	body := courseBody("Basiskurs Herbst", "bk-2024", "2024-09-01")
	updated, err := h.HandleUpdate(as(staff), &UpdateCourseInput{Slug: "bk-2024", Body: body})
	require.NoError(t, err)
	assert.Equal(t, resp.Body.ID, updated.Body.ID)
	assert.Equal(t, "Basiskurs Herbst", updated.Body.Name)

	got, err := h.HandleGet(context.Background(), &CourseSlugInput{Slug: "bk-2024"})
	require.NoError(t, err)
	assert.Equal(t, "Basiskurs Herbst", got.Body.Name)

	list, err := h.HandleList(as(staff), &StaffInput{})
	require.NoError(t, err)
	assert.Len(t, list.Body, 1)

	_, err = h.HandleDelete(as(staff), &StaffCourseInput{Slug: "bk-2024"})
	require.NoError(t, err)
	_, err = h.HandleGet(context.Background(), &CourseSlugInput{Slug: "bk-2024"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestCourseValidationDetails(t *testing.T) {
	env := setup(t)
	staff := env.user(t, "staff", true)

	body := CourseBody{Slug: "Not A Slug", StartsOn: "2024-07-20", EndsOn: "2024-07-13", RegistrationDeadline: "13.07.2024"}
	_, err := env.handlers.Courses.HandleCreate(as(staff), &CreateCourseInput{Body: body})
	require.Error(t, err)

	var model *huma.ErrorModel
	require.ErrorAs(t, err, &model)
	assert.Equal(t, http.StatusUnprocessableEntity, model.Status)
	require.Len(t, model.Errors, 1)
	assert.Equal(t, "body.registration_deadline", model.Errors[0].Location)

	body.RegistrationDeadline = "2024-06-01"
	_, err = env.handlers.Courses.HandleCreate(as(staff), &CreateCourseInput{Body: body})
	require.ErrorAs(t, err, &model)
	locations := make([]string, 0, len(model.Errors))
	for _, d := range model.Errors {
		locations = append(locations, d.Location)
	}
	assert.Contains(t, locations, "body.name")
	assert.Contains(t, locations, "body.slug")

	details := errorDetails(t, err)
	assert.Equal(t, "Name: missing required field", details["body.name"])

	number := strings.Repeat("1", 101)
	body = courseBody("Basiskurs", "bk-2024", "2024-06-01")
	body.Number = &number
	_, err = env.handlers.Courses.HandleCreate(as(staff), &CreateCourseInput{Body: body})
	details = errorDetails(t, err)
	assert.Equal(t, "Kursnummer (z.Bsp PBS ZH 123-12): value is too long", details["body.number"])
}

func TestOpenCoursesArePublic(t *testing.T) {
	env := setup(t)
	staff := env.user(t, "staff", true)
	h := env.handlers.Courses

	for _, b := range []CourseBody{
		courseBody("Vergangen", "past", "2024-05-09"),
		courseBody("Heute", "today", "2024-05-10"),
		courseBody("Sommer", "summer", "2024-06-01"),
	} {
		_, err := h.HandleCreate(as(staff), &CreateCourseInput{Body: b})
		require.NoError(t, err)
	}

	resp, err := h.HandleListOpen(context.Background(), &struct{}{})
	require.NoError(t, err)
	slugs := make([]string, 0, len(resp.Body))
	for _, c := range resp.Body {
		slugs = append(slugs, c.Slug)
	}
	assert.ElementsMatch(t, []string{"today", "summer"}, slugs)
}

func TestUnitHandlers(t *testing.T) {
	env := setup(t)
	staff := env.user(t, "staff", true)
	member := env.user(t, "member", false)
	h := env.handlers.Units

	_, err := h.HandleCreate(as(member), &CreateUnitInput{Body: UnitBody{Region: "Glattal", Name: "Pfadi Orion"}})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	created, err := h.HandleCreate(as(staff), &CreateUnitInput{Body: UnitBody{Region: "Glattal", Name: "Pfadi Orion"}})
	require.NoError(t, err)
	assert.Equal(t, "ZH", created.Body.Federation)

	list, err := h.HandleList(as(member), &auth.AuthInput{})
	require.NoError(t, err)
	require.Len(t, list.Body, 1)

	_, err = h.HandleList(context.Background(), &auth.AuthInput{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	updated, err := h.HandleUpdate(as(staff), &UpdateUnitInput{ID: created.Body.ID, Body: UnitBody{Region: "Glattal", Name: "Pfadi Orion Dübendorf"}})
	require.NoError(t, err)
	assert.Equal(t, "Pfadi Orion Dübendorf", updated.Body.Name)

	_, err = h.HandleCreate(as(staff), &CreateUnitInput{Body: UnitBody{}})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	blank := "   "
	_, err = h.HandleCreate(as(staff), &CreateUnitInput{Body: UnitBody{Federation: &blank, Region: "Glattal", Name: "Pfadi Uto"}})
	details := errorDetails(t, err)
	assert.Equal(t, "Kantonalverband: missing required field", details["body.federation"])

	_, err = h.HandleUpdate(as(staff), &UpdateUnitInput{ID: created.Body.ID, Body: UnitBody{Federation: &blank, Region: "Glattal", Name: "Pfadi Orion"}})
	assert.Contains(t, errorDetails(t, err), "body.federation")

	be := "BE"
	other, err := h.HandleCreate(as(staff), &CreateUnitInput{Body: UnitBody{Federation: &be, Region: "Bern", Name: "Pfadi Patria"}})
	require.NoError(t, err)
	assert.Equal(t, "BE", other.Body.Federation)

	_, err = h.HandleDelete(as(staff), &UnitIDInput{ID: created.Body.ID})
	require.NoError(t, err)
	_, err = h.HandleGet(as(member), &UnitIDInput{ID: created.Body.ID})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
