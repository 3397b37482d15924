// Package migrations contains the skill library schema migrations.
// Versions are timestamps (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/skillbuilder/skillbuilder/pkg/db"
)

// All returns all registered migrations in the correct order.
func All() []db.Migration {
	return []db.Migration{
		Migration20261001090000CreateSkills(),
		Migration20261001090001AddSkillIndexes(),
	}
}
