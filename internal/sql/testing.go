package sql

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/require"
)

// TestDatabaseURLEnvVar names the environment variable specifying the
// postgres server to use for database tests.
const TestDatabaseURLEnvVar = "CONSOLE_TEST_DATABASE"

// NewTestDB creates a logical database in the postgres server specified by the
// environment variable CONSOLE_TEST_DATABASE, and returns a connection string
// for the new database. The database is dropped upon test completion. The test
// is skipped if the environment variable is not set.
func NewTestDB(t *testing.T) string {
	t.Helper()

	connstr, ok := os.LookupEnv(TestDatabaseURLEnvVar)
	if !ok {
		t.Skipf("skipping test: %s not set", TestDatabaseURLEnvVar)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connstr)
	require.NoError(t, err, "unable to connect to database")
	t.Cleanup(func() { conn.Close(ctx) })

	// generate a safe, unique logical database name
	logical := "console_test_" + strings.ToLower(internal.GenerateRandomStringFromAlphabet(8, "abcdefghijklmnopqrstuvwxyz"))
	_, err = conn.Exec(ctx, "CREATE DATABASE "+logical)
	require.NoError(t, err, "unable to create database")
	t.Cleanup(func() {
		_, err := conn.Exec(ctx, "DROP DATABASE "+logical+" WITH (FORCE)")
		require.NoError(t, err, "unable to drop database %s", logical)
	})

	u, err := url.Parse(connstr)
	require.NoError(t, err)
	u.Path = "/" + logical
	return u.String()
}

// NewTestPool returns a migrated connection pool for a new test database.
func NewTestPool(t *testing.T) *DB {
	t.Helper()

	db, err := New(context.Background(), logr.Discard(), NewTestDB(t))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// mustExec is a convenience for tests to execute arbitrary sql.
func mustExec(t *testing.T, db *DB, sql string, args ...any) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err, fmt.Sprintf("executing: %s", sql))
}
