package library

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/db"
	"github.com/skillbuilder/skillbuilder/pkg/db/migrations"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const skillColumns = "id, name, description, category, content, prompt, created_at, published"

// SQLiteStore keeps records in the skills table
type SQLiteStore struct {
	dbPath string
	db     *sqlx.DB
}

// NewSQLiteStore opens dbPath and applies pending migrations
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	sqlDB, err := db.OpenAndMigrate(ctx, dbPath, migrations.All())
	if err != nil {
		return nil, skilltypes.StorageError("Failed to initialise skill library.", err)
	}
	return &SQLiteStore{dbPath: dbPath, db: sqlDB}, nil
}

// Put upserts the record
func (s *SQLiteStore) Put(ctx context.Context, record skilltypes.Record) error {
	if !skilltypes.ValidID(record.ID) {
		return skilltypes.ValidationError("Invalid skill id.")
	}
	record.CreatedAt = record.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO skills (`+skillColumns+`)
		VALUES (:id, :name, :description, :category, :content, :prompt, :created_at, :published)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			content = excluded.content,
			prompt = excluded.prompt,
			created_at = excluded.created_at,
			published = excluded.published
	`, record)
	if err != nil {
		return skilltypes.StorageError("Failed to save skill.", errors.Wrap(err, "failed to upsert skill"))
	}

	logger.G(ctx).WithField("skill_id", record.ID).Debug("saved skill record")
	return nil
}

// Get loads a single record
func (s *SQLiteStore) Get(ctx context.Context, id string) (skilltypes.Record, error) {
	var record skilltypes.Record
	err := s.db.GetContext(ctx, &record, "SELECT "+skillColumns+" FROM skills WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return skilltypes.Record{}, skilltypes.NotFoundError(id)
	}
	if err != nil {
		return skilltypes.Record{}, skilltypes.StorageError("Failed to load skill.", errors.Wrap(err, "failed to query skill"))
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// List returns all records, newest first
func (s *SQLiteStore) List(ctx context.Context) ([]skilltypes.Record, error) {
	records := []skilltypes.Record{}
	err := s.db.SelectContext(ctx, &records, "SELECT "+skillColumns+" FROM skills ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, skilltypes.StorageError("Failed to load skills.", errors.Wrap(err, "failed to list skills"))
	}
	for i := range records {
		records[i].CreatedAt = records[i].CreatedAt.UTC()
	}
	sortNewestFirst(records)
	return records, nil
}

// Update merges patch over the stored record
func (s *SQLiteStore) Update(ctx context.Context, id string, patch skilltypes.Patch) (skilltypes.Record, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return skilltypes.Record{}, err
	}

	updated, err := ApplyPatch(record, patch)
	if err != nil {
		return skilltypes.Record{}, err
	}

	if err := s.Put(ctx, updated); err != nil {
		return skilltypes.Record{}, err
	}
	updated.CreatedAt = updated.CreatedAt.UTC()
	return updated, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
