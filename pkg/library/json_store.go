package library

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const recordExt = ".json"

// JSONStore keeps one indented JSON file per record
type JSONStore struct {
	basePath string
}

// NewJSONStore creates a JSON file-based store rooted at basePath
func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, skilltypes.StorageError("Failed to initialise skill library.", errors.Wrap(err, "failed to create skills directory"))
	}
	return &JSONStore{basePath: basePath}, nil
}

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.basePath, id+recordExt)
}

// Put writes the record via a temporary file and rename
func (s *JSONStore) Put(ctx context.Context, record skilltypes.Record) error {
	if !skilltypes.ValidID(record.ID) {
		return skilltypes.ValidationError("Invalid skill id.")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return skilltypes.StorageError("Failed to save skill.", errors.Wrap(err, "failed to marshal skill record"))
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return skilltypes.StorageError("Failed to save skill.", errors.Wrap(err, "failed to create skills directory"))
	}

	filePath := s.path(record.ID)
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return skilltypes.StorageError("Failed to save skill.", errors.Wrap(err, "failed to write temporary skill file"))
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return skilltypes.StorageError("Failed to save skill.", errors.Wrap(err, "failed to rename temporary skill file"))
	}

	logger.G(ctx).WithField("skill_id", record.ID).Debug("saved skill record")
	return nil
}

// Get reads a record from its JSON file
func (s *JSONStore) Get(_ context.Context, id string) (skilltypes.Record, error) {
	if !skilltypes.ValidID(id) {
		return skilltypes.Record{}, skilltypes.NotFoundError(id)
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return skilltypes.Record{}, skilltypes.NotFoundError(id)
		}
		return skilltypes.Record{}, skilltypes.StorageError("Failed to load skill.", errors.Wrap(err, "failed to read skill file"))
	}

	var record skilltypes.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return skilltypes.Record{}, skilltypes.StorageError("Failed to load skill.", errors.Wrapf(err, "failed to unmarshal skill %s", id))
	}
	return record, nil
}

// List loads every record in the directory, newest first. Unreadable
// files are logged and skipped.
func (s *JSONStore) List(ctx context.Context) ([]skilltypes.Record, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []skilltypes.Record{}, nil
		}
		return nil, skilltypes.StorageError("Failed to load skills.", errors.Wrap(err, "failed to read skills directory"))
	}

	records := make([]skilltypes.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			logger.G(ctx).WithError(err).WithField("file", entry.Name()).Warn("failed to read skill file")
			continue
		}

		var record skilltypes.Record
		if err := json.Unmarshal(data, &record); err != nil {
			logger.G(ctx).WithError(err).WithField("file", entry.Name()).Warn("failed to parse skill file")
			continue
		}
		records = append(records, record)
	}

	sortNewestFirst(records)
	return records, nil
}

// Update merges patch over the stored record, keeping its ID
func (s *JSONStore) Update(ctx context.Context, id string, patch skilltypes.Patch) (skilltypes.Record, error) {
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
	return updated, nil
}

// Close is a no-op for the JSON store
func (s *JSONStore) Close() error {
	return nil
}

func sortNewestFirst(records []skilltypes.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
