package postgres

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for creating the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

// Migrations lists the schema gatekeeper's account store runs on, oldest first.
var Migrations = []Migration{
	{Key: "20261017_create_accounts", Executor: createAccounts},
}

func createAccounts(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id text PRIMARY KEY,
			email text NOT NULL,
			name text NOT NULL DEFAULT '',
			password_hash bytea NOT NULL,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL,
			CONSTRAINT accounts_email UNIQUE (email)
		)
	`).Error
}

func (m Migration) execute(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := m.Executor(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := createMigrationRecord(tx, m.Key); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// MigrateUp runs, in order, each of migrations not yet recorded as run in schema.
// MigrateUp stops at the first migration failing and returns its error.
func MigrateUp(db *gorm.DB, schema string, migrations []Migration) error {
	if err := ensureSchema(db, schema); err != nil {
		return err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	toRun, err := determineMigrationsToRun(db, migrations)
	if err != nil {
		return err
	}

	for _, m := range toRun {
		if err := m.execute(db); err != nil {
			return fmt.Errorf("%w: migration %s: %s", ErrMigration, m.Key, err)
		}
	}

	return nil
}

func ensureSchema(db *gorm.DB, schema string) error {
	err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(schema)).Error
	if err != nil {
		return fmt.Errorf("%w: creating %s schema: %s", ErrMigration, schema, err)
	}

	return nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("%w: creating migrations table: %s", ErrMigration, err)
	}

	return nil
}

func determineMigrationsToRun(db *gorm.DB, all []Migration) ([]Migration, error) {
	var keys []string
	if err := db.Raw("SELECT key FROM migrations").Scan(&keys).Error; err != nil {
		return nil, fmt.Errorf("%w: fetching ran migrations: %s", ErrMigration, err)
	}

	ran := make(map[string]bool, len(keys))
	for _, k := range keys {
		ran[k] = true
	}

	var toRun []Migration
	for _, m := range all {
		if !ran[m.Key] {
			toRun = append(toRun, m)
		}
	}

	return toRun, nil
}

func createMigrationRecord(db *gorm.DB, key string) error {
	return db.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, key, time.Now().Unix()).Error
}
