package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/db"
)

// Migration20261001090001AddSkillIndexes indexes listing order and the
// published filter.
func Migration20261001090001AddSkillIndexes() db.Migration {
	return db.Migration{
		Version:     20261001090001,
		Description: "Add skill listing indexes",
		Up: func(tx *sql.Tx) error {
			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_skills_created_at ON skills(created_at DESC)",
				"CREATE INDEX IF NOT EXISTS idx_skills_published ON skills(published, created_at DESC)",
			}
			for _, stmt := range indexes {
				if _, err := tx.Exec(stmt); err != nil {
					return errors.Wrapf(err, "failed to execute: %s", stmt)
				}
			}
			return nil
		},
		Down: func(tx *sql.Tx) error {
			for _, idx := range []string{"idx_skills_published", "idx_skills_created_at"} {
				if _, err := tx.Exec("DROP INDEX IF EXISTS " + idx); err != nil {
					return errors.Wrapf(err, "failed to drop index %s", idx)
				}
			}
			return nil
		},
	}
}
