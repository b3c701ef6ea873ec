package db

import (
	"context"
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migrate runs all pending migrations.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	return MigrateContext(context.Background(), db, logger)
}

// MigrateContext applies every embedded migration whose version prefix is
// not yet recorded in schema_migrations. Each file runs in its own
// transaction together with its version row.
func MigrateContext(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	var ran int
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]
		if applied[version] {
			continue
		}
		if len(applied) == 0 && version != "000" {
			return errors.Newf("schema_migrations table missing, but migration is not 000: %s", filename)
		}

		body, err := migrations.ReadFile(path.Join(migrationsDir, filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}

		if logger != nil {
			logger.Infow("Applying migration", "migration", filename, "version", version)
		}

		if err := applyMigration(ctx, db, version, string(body)); err != nil {
			return errors.Wrapf(err, "apply %s", filename)
		}
		applied[version] = true
		ran++
	}

	if logger != nil {
		logger.Debugw("Migrations complete",
			"total_migrations", len(files),
			"applied_now", ran,
		)
	}
	return nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	// 000_create_schema_migrations.sql sorts first
	sort.Strings(files)
	return files, nil
}

// appliedVersions returns an empty set when schema_migrations does not exist.
func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "check schema_migrations")
	}
	if exists == 0 {
		return applied, nil
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "list applied migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[v] = true
	}
	return applied, errors.Wrap(rows.Err(), "iterate applied migrations")
}

func applyMigration(ctx context.Context, db *sql.DB, version, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "execute")
	}
	// 000 creates the table, then records itself
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "record version")
	}
	return errors.Wrap(tx.Commit(), "commit")
}
