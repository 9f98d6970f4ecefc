package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("docsum_test"),
		postgres.WithUsername("docsum"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func TestRunMigrationsCreatesSchema(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	database, err := Connect(ctx, dsn, DefaultMigrateOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if err := RunMigrations(ctx, database); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// second run is a no-op
	if err := RunMigrations(ctx, database); err != nil {
		t.Fatalf("RunMigrations again: %v", err)
	}

	_, err = database.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, file_name, file_url, status)
		VALUES ('6f1c1f5e-6a53-4f3e-9a0b-0f5c2f0b8f11', 'user-1', 'a.pdf', 'http://x/a.pdf', 'completed')`)
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}

	_, err = database.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, file_name, file_url, status)
		VALUES ('6f1c1f5e-6a53-4f3e-9a0b-0f5c2f0b8f12', 'user-1', 'b.pdf', 'http://x/b.pdf', 'bogus')`)
	if err == nil {
		t.Fatalf("expected status check constraint to reject unknown status")
	}
}
