package catalog

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const (
	exportFileName = "SKILL.md"
	// exportConcurrency bounds parallel record loads
	exportConcurrency = 8
	// MaxExportIDs caps a single export request
	MaxExportIDs = 100
)

// Export writes a zip archive to w holding <name>/SKILL.md for each id and
// returns the number of entries written. Duplicate ids are exported once
// and every record gets a distinct directory. Nothing is written when any
// id is unknown.
func (s *Service) Export(ctx context.Context, w io.Writer, ids []string) (int, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, skilltypes.ValidationError("Select at least one skill to export.")
	}
	if len(ids) > MaxExportIDs {
		return 0, skilltypes.ValidationError("Too many skills selected for export.")
	}

	records := make([]skilltypes.Record, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			record, err := s.store.Get(gctx, id)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	zw := zip.NewWriter(w)
	used := make(map[string]bool, len(records))
	for _, record := range records {
		dir := exportDir(record, used)
		used[dir] = true

		f, err := zw.Create(path.Join(dir, exportFileName))
		if err != nil {
			return 0, skilltypes.StorageError("Failed to export skills.", errors.Wrap(err, "failed to create zip entry"))
		}
		if _, err := io.WriteString(f, record.Content); err != nil {
			return 0, skilltypes.StorageError("Failed to export skills.", errors.Wrap(err, "failed to write zip entry"))
		}
	}

	if err := zw.Close(); err != nil {
		return 0, skilltypes.StorageError("Failed to export skills.", errors.Wrap(err, "failed to finalise zip archive"))
	}

	logger.G(ctx).WithField("count", len(records)).Info("exported skills")
	return len(records), nil
}

// exportDir picks the archive directory for record: its name, then
// name-<id>, then name-<id>-2, -3 and so on until one is free.
func exportDir(record skilltypes.Record, used map[string]bool) string {
	base := record.Name
	if base == "" {
		base = record.ID
	}
	if !used[base] {
		return base
	}

	dir := base + "-" + record.ID
	for n := 2; used[dir]; n++ {
		dir = fmt.Sprintf("%s-%s-%d", base, record.ID, n)
	}
	return dir
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
