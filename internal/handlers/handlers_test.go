package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/require"

	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/config"
	"github.com/gloggi/ausbildung-api/internal/database"
	"github.com/gloggi/ausbildung-api/internal/migrations"
	"github.com/gloggi/ausbildung-api/internal/models"
	"github.com/gloggi/ausbildung-api/internal/store"
)

type fakeNotifier struct {
	registrations []models.Registration
	sheets        []models.Registration
}

func (f *fakeNotifier) NotifyRegistration(_ models.User, _ models.Course, r models.Registration) error {
	f.registrations = append(f.registrations, r)
	return nil
}

func (f *fakeNotifier) NotifyEmergencySheet(r models.Registration) error {
	f.sheets = append(f.sheets, r)
	return errors.New("discord unavailable")
}

type testEnv struct {
	cfg      *config.Config
	stores   *store.Stores
	notifier *fakeNotifier
	handlers Handlers
}

var testNow = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	seq, err := migrations.NewSequencer(db, migrations.Steps())
	require.NoError(t, err)
	_, err = seq.Up(context.Background(), seq.Latest())
	require.NoError(t, err)

	stores := store.New(db, time.UTC, func() time.Time { return testNow })
	cfg := &config.Config{JWTSecret: "test-secret", FrontendURL: "http://localhost:3000"}
	authHandler := auth.NewAuthHandler(cfg, stores.Users)
	n := &fakeNotifier{}
	return &testEnv{
		cfg:      cfg,
		stores:   stores,
		notifier: n,
		handlers: Handlers{
			Auth:          authHandler,
			Courses:       NewCourseHandler(stores, authHandler),
			Units:         NewUnitHandler(stores, authHandler),
			Registrations: NewRegistrationHandler(stores, n, authHandler),
		},
	}
}

func (e *testEnv) user(t *testing.T, subject string, staff bool) *models.User {
	t.Helper()
	u := &models.User{Subject: subject, Username: subject, Email: subject + "@example.com", IsStaff: staff}
	require.NoError(t, e.stores.Users.UpsertBySubject(context.Background(), u))
	return u
}

func (e *testEnv) unit(t *testing.T) *models.Unit {
	t.Helper()
	u := &models.Unit{Federation: "ZH", Region: "Glattal", Name: "Pfadi Orion"}
	require.NoError(t, e.stores.Units.Create(context.Background(), u))
	return u
}

func as(u *models.User) context.Context {
	return context.WithValue(context.Background(), auth.UserIDKey, u.ID)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)
	return se.GetStatus()
}

// errorDetails maps the location of every detail of a 422 response to its
// message.
func errorDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	var model *huma.ErrorModel
	require.ErrorAs(t, err, &model)
	require.Equal(t, http.StatusUnprocessableEntity, model.Status)
	details := make(map[string]string, len(model.Errors))
	for _, d := range model.Errors {
		details[d.Location] = d.Message
	}
	return details
}

func courseBody(name, slug, deadline string) CourseBody {
	return CourseBody{
		Name:                 name,
		Slug:                 slug,
		StartsOn:             "2024-07-13",
		EndsOn:               "2024-07-20",
		RegistrationDeadline: deadline,
	}
}

func registrationBody(unitID uint) RegistrationBody {
	mobile := "079 123 45 67"
	return RegistrationBody{
		UnitID:        unitID,
		Nickname:      "Fuchs",
		FirstName:     "Anna",
		LastName:      "Muster",
		Gender:        "2",
		BirthDate:     "2005-03-04",
		Street:        "Bahnhofstrasse 1",
		PostalCode:    8001,
		City:          "Zürich",
		Email:         "anna@example.com",
		Mobile:        &mobile,
		UnitSection:   "Pfadistufe",
		Level:         "pfadi",
		FirstLanguage: "D",
		Vegetarian:    true,
	}
}

func sheetBody() EmergencySheetBody {
	return EmergencySheetBody{
		Contact:            "Eva Muster",
		Street:             "Bahnhofstrasse 1",
		PostalCode:         8001,
		City:               "Zürich",
		Email:              "eva@example.com",
		HealthInsurer:      "Helsana",
		DoctorName:         "Dr. Meier",
		DoctorStreet:       "Seestrasse 2",
		DoctorPostalCode:   8002,
		DoctorCity:         "Zürich",
		DoctorPhone:        "044 987 65 43",
		TetanusVaccination: "2020",
	}
}
