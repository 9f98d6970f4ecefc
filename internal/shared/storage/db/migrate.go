package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var gooseSetup sync.Once
var gooseSetupErr error

// Commands accepted by Migrate.
var migrateCommands = map[string]struct{}{
	"up": {}, "up-by-one": {}, "down": {}, "redo": {}, "status": {}, "version": {},
}

func setupGoose() error {
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrationFiles)
		gooseSetupErr = goose.SetDialect("postgres")
	})
	return gooseSetupErr
}

// RunMigrations applies the embedded users and documents migrations. A nil
// database is a no-op so the API can run on in-memory repositories.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Migrate runs a single goose command against the embedded migrations.
func Migrate(database *sql.DB, command string, args ...string) error {
	command = strings.ToLower(strings.TrimSpace(command))
	if command == "" {
		command = "up"
	}
	if _, ok := migrateCommands[command]; !ok {
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if database == nil {
		return fmt.Errorf("migrate %s: database is nil", command)
	}
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.Run(command, database, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
