package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/models"
)

func TestEmergencySheetOnePerRegistration(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStores(t, registrationNow)
	course := createCourse(t, st, "Basiskurs", "basiskurs", "2024-06-01")
	unit := createUnit(t, st)
	user := createUser(t, st, "sub-1", "anna")
	reg := newRegistration(t, course, user, unit)
	require.NoError(t, st.Registrations.Create(ctx, reg, nil))

	sheet := validSheet(reg.ID)
	require.NoError(t, st.EmergencySheets.Create(ctx, sheet))
	require.NotZero(t, sheet.ID)

	got, err := st.Registrations.Get(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmergencySheetReceivedAt)
	assert.True(t, registrationNow.Equal(*got.EmergencySheetReceivedAt))
	require.NotNil(t, got.EmergencySheet)
	assert.Equal(t, "Helsana", got.EmergencySheet.HealthInsurer)

	err = st.EmergencySheets.Create(ctx, validSheet(reg.ID))
	require.ErrorIs(t, err, apperrors.ErrUniquenessViolation)
	var uerr *apperrors.UniquenessError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "emergency sheet", uerr.Entity)

	byReg, err := st.EmergencySheets.GetByRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, sheet.ID, byReg.ID)
}

func TestEmergencySheetKeepsStaffTimestamp(t *testing.T) {
	ctx := context.Background()
	st, db := setupStores(t, registrationNow)
	course := createCourse(t, st, "Basiskurs", "basiskurs", "2024-06-01")
	unit := createUnit(t, st)
	user := createUser(t, st, "sub-1", "anna")
	reg := newRegistration(t, course, user, unit)
	require.NoError(t, st.Registrations.Create(ctx, reg, nil))

	earlier := registrationNow.Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.Registration{}).Where("id = ?", reg.ID).
		UpdateColumn("emergency_sheet_received_at", earlier).Error)

	require.NoError(t, st.EmergencySheets.Create(ctx, validSheet(reg.ID)))

	got, err := st.Registrations.Get(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmergencySheetReceivedAt)
	assert.True(t, earlier.Equal(*got.EmergencySheetReceivedAt))
}

func TestEmergencySheetErrors(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStores(t, registrationNow)
	course := createCourse(t, st, "Basiskurs", "basiskurs", "2024-06-01")
	unit := createUnit(t, st)
	user := createUser(t, st, "sub-1", "anna")
	reg := newRegistration(t, course, user, unit)
	require.NoError(t, st.Registrations.Create(ctx, reg, nil))

	t.Run("UnknownRegistration", func(t *testing.T) {
		err := st.EmergencySheets.Create(ctx, validSheet(9999))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		sheet := validSheet(reg.ID)
		sheet.Contact = ""
		sheet.DoctorPostalCode = 0
		err := st.EmergencySheets.Create(ctx, sheet)
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"contact", "doctor_postal_code"}, verr.FieldNames())

		got, err := st.Registrations.Get(ctx, reg.ID)
		require.NoError(t, err)
		assert.Nil(t, got.EmergencySheetReceivedAt, "failed create must not stamp the registration")
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		sheet := validSheet(reg.ID)
		require.NoError(t, st.EmergencySheets.Create(ctx, sheet))

		sheet.Medication = "Ventolin"
		sheet.RegistrationID = 9999
		require.NoError(t, st.EmergencySheets.Update(ctx, sheet))

		got, err := st.EmergencySheets.Get(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ventolin", got.Medication)
		assert.Equal(t, reg.ID, got.RegistrationID)

		stamped, err := st.Registrations.Get(ctx, reg.ID)
		require.NoError(t, err)
		require.NotNil(t, stamped.EmergencySheetReceivedAt)

		require.NoError(t, st.EmergencySheets.Delete(ctx, sheet.ID))
		_, err = st.EmergencySheets.GetByRegistration(ctx, reg.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, st.EmergencySheets.Delete(ctx, sheet.ID), apperrors.ErrNotFound)

		cleared, err := st.Registrations.Get(ctx, reg.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.EmergencySheetReceivedAt, "no sheet is held after deletion")
		assert.Nil(t, cleared.EmergencySheet)

		// a new sheet stamps the registration again
		require.NoError(t, st.EmergencySheets.Create(ctx, validSheet(reg.ID)))
		again, err := st.Registrations.Get(ctx, reg.ID)
		require.NoError(t, err)
		assert.NotNil(t, again.EmergencySheetReceivedAt)
	})
}
