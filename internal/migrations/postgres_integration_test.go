//go:build integration

package migrations

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/database"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=ausbildung",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=ausbildung",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	url := fmt.Sprintf("postgres://ausbildung:secret@%s/ausbildung?sslmode=disable", resource.GetHostPort("5432/tcp"))
	var db *gorm.DB
	require.NoError(t, pool.Retry(func() error {
		var err error
		db, err = database.Open(url)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}))
	return db
}

type pgColumn struct {
	TableName     string
	ColumnName    string
	DataType      string
	IsNullable    string
	ColumnDefault *string
}

type pgConstraint struct {
	TableName      string
	ConstraintName string
	ConstraintType string
}

func pgSnapshot(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var cols []pgColumn
	require.NoError(t, db.Raw(`SELECT table_name, column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name <> ?`, LedgerEntry{}.TableName()).Scan(&cols).Error)
	var constraints []pgConstraint
	require.NoError(t, db.Raw(`SELECT table_name, constraint_name, constraint_type
		FROM information_schema.table_constraints
		WHERE table_schema = 'public' AND table_name <> ? AND constraint_type <> 'CHECK'`, LedgerEntry{}.TableName()).Scan(&constraints).Error)

	var lines []string
	for _, c := range cols {
		def := "<nil>"
		if c.ColumnDefault != nil {
			def = *c.ColumnDefault
		}
		lines = append(lines, fmt.Sprintf("%s.%s %s null=%s default=%s", c.TableName, c.ColumnName, c.DataType, c.IsNullable, def))
	}
	for _, c := range constraints {
		lines = append(lines, fmt.Sprintf("%s %s %s", c.TableName, c.ConstraintType, c.ConstraintName))
	}
	sort.Strings(lines)
	return lines
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	seq := newTestSequencer(t, db, Steps())

	for n := 1; n <= seq.Latest(); n++ {
		before := pgSnapshot(t, db)
		require.NoError(t, seq.Apply(ctx, n), "apply %d", n)
		require.NoError(t, seq.Revert(ctx, n), "revert %d", n)
		assert.Equal(t, before, pgSnapshot(t, db), "step %d", n)
		require.NoError(t, seq.Apply(ctx, n), "reapply %d", n)
	}

	reverted, err := seq.Down(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, reverted, seq.Latest())
	assert.Empty(t, pgSnapshot(t, db))
}
