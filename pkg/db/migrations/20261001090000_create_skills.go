package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/db"
)

// Migration20261001090000CreateSkills creates the skills table.
func Migration20261001090000CreateSkills() db.Migration {
	return db.Migration{
		Version:     20261001090000,
		Description: "Create skills table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS skills (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					content TEXT NOT NULL,
					prompt TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL,
					published BOOLEAN NOT NULL DEFAULT 0
				)
			`)
			return errors.Wrap(err, "failed to create skills table")
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE IF EXISTS skills")
			return errors.Wrap(err, "failed to drop skills table")
		},
	}
}
