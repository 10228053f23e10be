package store

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/database"
	"github.com/gloggi/ausbildung-api/internal/fields"
	"github.com/gloggi/ausbildung-api/internal/migrations"
	"github.com/gloggi/ausbildung-api/internal/models"
)

// setupTestDB returns an in-memory database migrated to the latest version.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	seq, err := migrations.NewSequencer(db, migrations.Steps())
	require.NoError(t, err)
	_, err = seq.Up(context.Background(), seq.Latest())
	require.NoError(t, err)
	return db
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func setupStores(t *testing.T, now time.Time) (*Stores, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return New(db, time.UTC, fixedClock(now)), db
}

func date(t *testing.T, s string) datatypes.Date {
	t.Helper()
	d, err := fields.ParseDate(s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T {
	return &v
}

func createCourse(t *testing.T, st *Stores, name, slug, deadline string) *models.Course {
	t.Helper()
	c := &models.Course{
		Name:                 name,
		Slug:                 slug,
		StartsOn:             date(t, "2024-07-13"),
		EndsOn:               date(t, "2024-07-20"),
		RegistrationDeadline: date(t, deadline),
	}
	require.NoError(t, st.Courses.Create(context.Background(), c))
	return c
}

func createUnit(t *testing.T, st *Stores) *models.Unit {
	t.Helper()
	u := &models.Unit{Federation: "ZH", Region: "Glattal", Name: "Pfadi Orion"}
	require.NoError(t, st.Units.Create(context.Background(), u))
	return u
}

func createUser(t *testing.T, st *Stores, subject, username string) *models.User {
	t.Helper()
	u := &models.User{Subject: subject, Username: username, Email: username + "@example.com"}
	require.NoError(t, st.Users.UpsertBySubject(context.Background(), u))
	return u
}

func validFields(t *testing.T) models.RegistrationFields {
	return models.RegistrationFields{
		Nickname:      "Fuchs",
		FirstName:     "Anna",
		LastName:      "Muster",
		Gender:        "2",
		BirthDate:     date(t, "2005-03-04"),
		Street:        "Bahnhofstrasse 1",
		PostalCode:    8001,
		City:          "Zürich",
		Country:       "CH",
		Email:         "anna@example.com",
		Mobile:        ptr("079 123 45 67"),
		UnitSection:   "Pfadistufe",
		Level:         "pfadi",
		Nationality:   "CH",
		FirstLanguage: "D",
		RailPass:      "Halbtax",
		JSNumber:      ptr(123456),
	}
}

func newRegistration(t *testing.T, course *models.Course, user *models.User, unit *models.Unit) *models.Registration {
	return &models.Registration{
		CourseID:           course.ID,
		UserID:             user.ID,
		UnitID:             unit.ID,
		RegistrationFields: validFields(t),
	}
}

func validSheet(registrationID uint) *models.EmergencySheet {
	return &models.EmergencySheet{
		RegistrationID:     registrationID,
		Contact:            "Eva Muster",
		Street:             "Bahnhofstrasse 1",
		PostalCode:         8001,
		City:               "Zürich",
		Country:            "CH",
		Email:              "eva@example.com",
		Phone:              ptr("044 123 45 67"),
		HealthInsurer:      "Helsana",
		HelicopterRescue:   true,
		DoctorName:         "Dr. Meier",
		DoctorStreet:       "Seestrasse 2",
		DoctorPostalCode:   8002,
		DoctorCity:         "Zürich",
		DoctorPhone:        "044 765 43 21",
		TetanusVaccination: "2020",
		HealthNotes:        "Heuschnupfen",
	}
}
