package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/internal/testinfra"
	"github.com/vvka-141/pgload/pkg/pgload"
)

var (
	testContainerOnce sync.Once
	testContainer     *testinfra.PostgresContainer
	testContainerErr  error
)

func getOrStartTestContainer() (*testinfra.PostgresContainer, error) {
	testContainerOnce.Do(func() {
		testContainer, testContainerErr = testinfra.StartSimplePostgres(context.Background())
	})
	return testContainer, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("PGLOAD_TEST_CONN"); connString != "" {
		return connString
	}

	ctr, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("PGLOAD_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return ctr.ConnString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// RequireContainer returns the shared testcontainer. Tests that need the
// server to read files from its own filesystem use it instead of
// PGLOAD_TEST_CONN, which may point at a remote server.
func RequireContainer(t *testing.T) *testinfra.PostgresContainer {
	t.Helper()

	SkipIfShort(t)
	ctr, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("Docker unavailable: %v", err)
	}
	return ctr
}

// TestTarget builds a pgload.Target for connString loading into table.
func TestTarget(t *testing.T, connString, table string) pgload.Target {
	t.Helper()

	target, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	target.Name = "test"
	target.Table = table
	return *target
}

// CreateEventsTable creates a fresh three-column events table and drops it
// when the test completes.
func CreateEventsTable(t *testing.T, connString, table string) {
	t.Helper()

	Exec(t, connString, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	Exec(t, connString, fmt.Sprintf(
		"CREATE TABLE %s (event_id text PRIMARY KEY, app_id text, payload text)", table))

	t.Cleanup(func() {
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			t.Logf("Warning: Failed to connect for cleanup: %v", err)
			return
		}
		defer conn.Close(ctx)
		if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			t.Logf("Warning: Failed to drop table %s: %v", table, err)
		}
	})
}

// Exec runs sql on a fresh connection and fails the test on error.
func Exec(t *testing.T, connString, sql string) {
	t.Helper()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, sql); err != nil {
		t.Fatalf("Failed to execute %q: %v", sql, err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, connString, table string) int64 {
	t.Helper()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	var n int64
	if err := conn.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
