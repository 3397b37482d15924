package skills

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

const skillFileName = "SKILL.md"

// Importer loads SKILL.md files from disk into the library
type Importer struct {
	store Store
	now   func() time.Time
	md    goldmark.Markdown
}

// NewImporter creates an importer writing to store
func NewImporter(store Store) *Importer {
	return &Importer{
		store: store,
		now:   time.Now,
		md:    goldmark.New(goldmark.WithExtensions(meta.Meta)),
	}
}

// Import persists every **/SKILL.md under root as a new published record.
// Files that fail to load are skipped and reported together in the
// returned error; successfully imported records are returned regardless.
func (i *Importer) Import(ctx context.Context, root string) ([]skilltypes.Record, error) {
	paths, err := doublestar.Glob(os.DirFS(root), "**/"+skillFileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", root)
	}
	sort.Strings(paths)

	var (
		imported []skilltypes.Record
		result   *multierror.Error
	)
	for _, rel := range paths {
		path := filepath.Join(root, filepath.FromSlash(rel))
		record, err := i.importFile(ctx, path)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, path))
			continue
		}
		logger.G(ctx).WithField("skill_id", record.ID).WithField("path", path).Info("imported skill")
		imported = append(imported, record)
	}

	return imported, result.ErrorOrNil()
}

func (i *Importer) importFile(ctx context.Context, path string) (skilltypes.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return skilltypes.Record{}, errors.Wrap(err, "failed to read skill file")
	}

	metadata, err := i.frontMatter(content)
	if err != nil {
		return skilltypes.Record{}, err
	}

	name, _ := metadata["name"].(string)
	description, _ := metadata["description"].(string)
	if name == "" {
		return skilltypes.Record{}, errors.New("skill name is required in frontmatter")
	}

	record := skilltypes.Record{
		ID:          skilltypes.GenerateID(),
		Name:        NormalizeName(name),
		Description: TruncateDescription(description),
		Content:     string(content),
		Prompt:      fmt.Sprintf("imported from %s", path),
		CreatedAt:   i.now().UTC(),
		Published:   true,
	}
	if category, ok := metadata["category"].(string); ok {
		if c, valid := skilltypes.ParseCategory(category); valid {
			record.Category = c
		}
	}

	if err := i.store.Put(ctx, record); err != nil {
		return skilltypes.Record{}, err
	}
	return record, nil
}

// frontMatter parses the YAML metadata block of a SKILL.md document
func (i *Importer) frontMatter(content []byte) (map[string]any, error) {
	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := i.md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metadata, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}
	if metadata == nil {
		return nil, errors.New("missing frontmatter")
	}
	return metadata, nil
}
