package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloggi/ausbildung-api/internal/apperrors"
	"github.com/gloggi/ausbildung-api/internal/models"
)

func TestUnitCRUD(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStores(t, time.Now())

	u := createUnit(t, st)
	assert.Equal(t, "ZH", u.Federation)

	u.Name = "Pfadi Orion Dübendorf"
	require.NoError(t, st.Units.Update(ctx, u))
	got, err := st.Units.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pfadi Orion Dübendorf", got.Name)

	require.NoError(t, st.Units.Create(ctx, &models.Unit{Federation: "BE", Region: "Bern", Name: "Pfadi Patria"}))
	units, err := st.Units.List(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "BE", units[0].Federation)

	err = st.Units.Create(ctx, &models.Unit{Region: " ", Name: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = st.Units.Create(ctx, &models.Unit{Federation: "   ", Region: "Glattal", Name: "Pfadi Uto"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"federation"}, verr.FieldNames())
	assert.Equal(t, "Kantonalverband", verr.Label("federation"))
	units, err = st.Units.List(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 2)

	assert.ErrorIs(t, st.Units.Update(ctx, &models.Unit{ID: 9999, Region: "x", Name: "y"}), apperrors.ErrNotFound)

	require.NoError(t, st.Units.Delete(ctx, u.ID))
	_, err = st.Units.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserUpsertBySubject(t *testing.T) {
	ctx := context.Background()
	st, _ := setupStores(t, time.Now())

	first := &models.User{Subject: "sub-1", Username: "anna", Email: "anna@example.com", IsStaff: true}
	require.NoError(t, st.Users.UpsertBySubject(ctx, first))

	again := &models.User{Subject: "sub-1", Username: "anna.muster", Email: "anna@example.org"}
	require.NoError(t, st.Users.UpsertBySubject(ctx, again))
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsStaff, "staff status is not revoked on login")

	got, err := st.Users.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna.muster", got.Username)
	assert.Equal(t, "anna@example.org", got.Email)

	assert.Error(t, st.Users.UpsertBySubject(ctx, &models.User{Username: "nobody"}))
	_, err = st.Users.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
