package migrations

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAndCheckMigrations(t *testing.T) {
	db := memDB(t)

	assert.ErrorIs(t, CheckMigrations(db, "sqlite3"), ErrMigrationsNotRun)

	n, err := RunMigrations(db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, CheckMigrations(db, "sqlite3"))

	// idempotent
	n, err = RunMigrations(db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLoadCensusCSV(t *testing.T) {
	ctx := context.Background()
	db := memDB(t)
	_, err := RunMigrations(db, "sqlite3")
	require.NoError(t, err)

	csv := "state,sex,age,pop2000,pop2008\n" +
		"Illinois,M,0,89600,95012\n" +
		"Illinois,M,1,88445,91829\n" +
		"New York,F,2,120000,121000\n"
	n, err := LoadCensusCSV(ctx, db, "sqlite3", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var state string
	var pop int64
	require.NoError(t, db.QueryRow("SELECT state, pop2008 FROM census ORDER BY rowid LIMIT 1").Scan(&state, &pop))
	assert.Equal(t, "Illinois", state)
	assert.Equal(t, int64(95012), pop)
}

func TestLoadCensusCSVRollsBack(t *testing.T) {
	ctx := context.Background()
	db := memDB(t)
	_, err := RunMigrations(db, "sqlite3")
	require.NoError(t, err)

	csv := "state,sex,age,pop2000,pop2008\n" +
		"Illinois,M,0,89600,95012\n" +
		"Illinois,M,,88445,91829\n"
	_, err = LoadCensusCSV(ctx, db, "sqlite3", strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrBadCensusRow)

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM census").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders("sqlite3", 3))
	assert.Equal(t, "$1, $2", placeholders("postgres", 2))
}
