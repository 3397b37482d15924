package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

func writeSkill(t *testing.T, root, dir, content string) {
	t.Helper()
	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, skillFileName), []byte(content), 0o644))
}

func TestImporterImport(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "pdf-processing", `---
name: PDF Processing
description: Extract text and tables from PDF files
category: data
---

# PDF Processing
`)
	writeSkill(t, root, "nested/plugins/reviewer", `---
name: code-reviewer
description: Reviews code
---

# Reviewer
`)
	writeSkill(t, root, "broken", "# No front matter here\n")
	writeSkill(t, root, "nameless", "---\ndescription: missing a name\n---\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("ignored"), 0o644))

	store := newMemoryStore()
	imported, err := NewImporter(store).Import(context.Background(), root)

	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	require.Len(t, imported, 2)
	assert.Len(t, store.records, 2)

	byName := map[string]skilltypes.Record{}
	for _, r := range imported {
		byName[r.Name] = r
	}

	pdf := byName["pdf-processing"]
	assert.Equal(t, "Extract text and tables from PDF files", pdf.Description)
	assert.Equal(t, skilltypes.CategoryData, pdf.Category)
	assert.True(t, pdf.Published)
	assert.Contains(t, pdf.Prompt, "imported from ")
	assert.Contains(t, pdf.Content, "# PDF Processing")

	reviewer := byName["code-reviewer"]
	assert.Empty(t, reviewer.Category)
	assert.NotEqual(t, pdf.ID, reviewer.ID)
}

func TestImporterEmptyDirectory(t *testing.T) {
	imported, err := NewImporter(newMemoryStore()).Import(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, imported)
}
