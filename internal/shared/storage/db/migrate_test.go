package db

import (
	"context"
	"strings"
	"testing"
)

func TestRunMigrationsNilDatabaseIsNoop(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	err := Migrate(nil, "drop-everything")
	if err == nil || !strings.Contains(err.Error(), "unknown migrate command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestMigrateRequiresDatabase(t *testing.T) {
	if err := Migrate(nil, "status"); err == nil {
		t.Fatal("expected error for nil database")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "00001_users.sql") || !strings.Contains(joined, "00002_documents.sql") {
		t.Fatalf("unexpected migrations %v", names)
	}
}
