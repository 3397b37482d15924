package db

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
)

const migrationsTable = "schema_migrations"

// Migration is a schema change identified by a YYYYMMDDHHmmss version
type Migration struct {
	Version     int64
	Description string
	Up          func(*sql.Tx) error
	// Down is optional; migrations without it cannot be rolled back
	Down func(*sql.Tx) error
}

// MigrationRunner applies and reverts migrations, recording applied
// versions in the schema_migrations table
type MigrationRunner struct {
	db *sqlx.DB
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sqlx.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

// Run applies every pending migration in version order, each in its own
// transaction, and returns the ones it applied
func (r *MigrationRunner) Run(ctx context.Context, migrations []Migration) ([]Migration, error) {
	pending, err := r.Pending(ctx, migrations)
	if err != nil {
		return nil, err
	}

	applied := make([]Migration, 0, len(pending))
	for _, m := range pending {
		err := r.inTx(ctx, func(tx *sqlx.Tx) error {
			if err := m.Up(tx.Tx); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO "+migrationsTable+" (version, applied_at, description) VALUES (?, ?, ?)",
				m.Version, time.Now().UTC(), m.Description)
			return errors.Wrap(err, "failed to record migration")
		})
		if err != nil {
			return applied, errors.Wrapf(err, "failed to apply migration %d: %s", m.Version, m.Description)
		}

		logger.G(ctx).WithField("version", m.Version).Debug("applied migration")
		applied = append(applied, m)
	}
	return applied, nil
}

// Rollback reverts the most recently applied migration. It is a no-op
// when nothing has been applied.
func (r *MigrationRunner) Rollback(ctx context.Context, migrations []Migration) error {
	versions, err := r.GetAppliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}
	latest := versions[len(versions)-1]

	var target *Migration
	for i := range migrations {
		if migrations[i].Version == latest {
			target = &migrations[i]
			break
		}
	}
	switch {
	case target == nil:
		return errors.Errorf("migration %d not found in provided migrations", latest)
	case target.Down == nil:
		return errors.Errorf("migration %d has no rollback function", latest)
	}

	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := target.Down(tx.Tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM "+migrationsTable+" WHERE version = ?", latest)
		return errors.Wrap(err, "failed to remove migration record")
	})
	if err != nil {
		return errors.Wrapf(err, "failed to roll back migration %d", latest)
	}

	logger.G(ctx).WithField("version", latest).Debug("rolled back migration")
	return nil
}

// Pending returns the migrations not yet applied, in version order
func (r *MigrationRunner) Pending(ctx context.Context, migrations []Migration) ([]Migration, error) {
	versions, err := r.GetAppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	applied := make(map[int64]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	var pending []Migration
	for _, m := range migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})
	return pending, nil
}

// GetAppliedVersions returns the applied versions in ascending order
func (r *MigrationRunner) GetAppliedVersions(ctx context.Context) ([]int64, error) {
	if err := r.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	var versions []int64
	err := r.db.SelectContext(ctx, &versions, "SELECT version FROM "+migrationsTable+" ORDER BY version")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get applied versions")
	}
	return versions, nil
}

func (r *MigrationRunner) ensureMigrationsTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL,
			description TEXT
		)
	`)
	return errors.Wrap(err, "failed to create "+migrationsTable+" table")
}

func (r *MigrationRunner) inTx(ctx context.Context, f func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit migration")
}
