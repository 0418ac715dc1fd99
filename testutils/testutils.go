package testutils

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"sorabackend/core"
	"sorabackend/db"
)

var testDatabaseURL string

// RunWithPostgres starts a disposable Postgres container for the test binary and runs m.
// DB_URL from the environment is used instead when set. Under -short or without Docker
// the tests run with no database and NewTestDB skips.
func RunWithPostgres(m *testing.M) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}

	if url := os.Getenv("DB_URL"); url != "" {
		testDatabaseURL = url
		return m.Run()
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sorabot"),
		postgres.WithUsername("sorabot"),
		postgres.WithPassword("sorabot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container unavailable, database tests will skip: %v\n", err)
		return m.Run()
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}()

	testDatabaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get postgres connection string: %v\n", err)
		return 1
	}

	return m.Run()
}

// NewTestDB connects to the test database and migrates a fresh schema that is dropped on cleanup.
func NewTestDB(t *testing.T) (*sqlx.DB, string) {
	t.Helper()
	if testing.Short() || testDatabaseURL == "" {
		t.Skip("skipping database integration test")
	}

	ctx := context.Background()
	dbConn, err := db.NewConnection(ctx, testDatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	schema := strings.ToLower(core.NewID("test"))
	require.NoError(t, db.RunMigrations(ctx, dbConn, schema), "Failed to migrate test schema")

	t.Cleanup(func() {
		_, _ = dbConn.ExecContext(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		_ = dbConn.Close()
	})

	return dbConn, schema
}

var snowflakeSeq atomic.Int64

func init() {
	snowflakeSeq.Store(100000000000000000 + time.Now().UnixNano()%100000000000000000)
}

// NewSnowflake returns a unique Discord-like id so tests never share rows.
func NewSnowflake() string {
	return strconv.FormatInt(snowflakeSeq.Add(1), 10)
}
