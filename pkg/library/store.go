// Package library persists skill records. Two backends are provided: one
// JSON file per record (the default) and a SQLite table.
package library

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/db"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// Store types
const (
	StoreTypeJSON   = "json"
	StoreTypeSQLite = "sqlite"
)

// Store defines the interface for skill persistence
type Store interface {
	// Put writes record keyed by its ID, replacing any existing record
	Put(ctx context.Context, record skilltypes.Record) error
	// Get returns the record or a NotFound error
	Get(ctx context.Context, id string) (skilltypes.Record, error)
	// List returns every record, newest first
	List(ctx context.Context) ([]skilltypes.Record, error)
	// Update merges patch over the stored record and writes it back
	Update(ctx context.Context, id string, patch skilltypes.Patch) (skilltypes.Record, error)

	Close() error
}

// Config holds configuration for the skill library
type Config struct {
	Store string `mapstructure:"store"`
	// Path is the records directory for the json store and the database
	// file for the sqlite store
	Path      string `mapstructure:"path"`
	UniqueIDs bool   `mapstructure:"unique_ids"`
}

// DefaultBasePath returns the base directory for library data
func DefaultBasePath() (string, error) {
	if basePath := os.Getenv("SKILLBUILDER_BASE_PATH"); basePath != "" {
		return basePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".skillbuilder"), nil
}

// WithDefaults fills the store type and path when unset
func (c Config) WithDefaults() (Config, error) {
	if c.Store == "" {
		c.Store = StoreTypeJSON
	}
	if c.Path != "" {
		return c, nil
	}

	switch c.Store {
	case StoreTypeSQLite:
		path, err := db.DefaultDBPath()
		if err != nil {
			return c, err
		}
		c.Path = path
	default:
		base, err := DefaultBasePath()
		if err != nil {
			return c, err
		}
		c.Path = filepath.Join(base, "skills")
	}
	return c, nil
}

// NewStore creates the Store implementation selected by config
func NewStore(ctx context.Context, config Config) (Store, error) {
	config, err := config.WithDefaults()
	if err != nil {
		return nil, err
	}

	switch config.Store {
	case StoreTypeJSON:
		return NewJSONStore(config.Path)
	case StoreTypeSQLite:
		return NewSQLiteStore(ctx, config.Path)
	default:
		return nil, errors.Errorf("unsupported library store: %s", config.Store)
	}
}
