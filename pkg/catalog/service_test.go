package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbuilder/skillbuilder/pkg/library"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

func newTestService(t *testing.T, records ...skilltypes.Record) *Service {
	t.Helper()
	store, err := library.NewJSONStore(filepath.Join(t.TempDir(), "skills"))
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, store.Put(context.Background(), r))
	}
	return NewService(store)
}

func record(id, name string, category skilltypes.Category, published bool, age time.Duration) skilltypes.Record {
	return skilltypes.Record{
		ID:          id,
		Name:        name,
		Description: "Description of " + name,
		Category:    category,
		Content:     "---\nname: " + name + "\n---\n\n# " + name + "\n",
		Prompt:      "make " + name,
		CreatedAt:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).Add(-age),
		Published:   published,
	}
}

func TestListPublished(t *testing.T) {
	svc := newTestService(t,
		record("aaaaaaaaaa", "oldest", skilltypes.CategoryDocs, true, 3*time.Hour),
		record("bbbbbbbbbb", "draft", skilltypes.CategoryDocs, false, 2*time.Hour),
		record("cccccccccc", "newest", "", true, time.Hour),
	)

	summaries, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []skilltypes.Summary{
		{ID: "cccccccccc", Name: "newest", Description: "Description of newest", Category: skilltypes.CategoryDev},
		{ID: "aaaaaaaaaa", Name: "oldest", Description: "Description of oldest", Category: skilltypes.CategoryDocs},
	}, summaries)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListPublishedEmpty(t *testing.T) {
	summaries, err := newTestService(t).ListPublished(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestGetByIDAndRaw(t *testing.T) {
	r := record("dddddddddd", "reader", skilltypes.CategoryData, false, 0)
	svc := newTestService(t, r)
	ctx := context.Background()

	got, err := svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Prompt, got.Prompt)

	raw, err := svc.GetRawContent(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Content, raw)

	_, err = svc.GetByID(ctx, "nope")
	assert.True(t, skilltypes.IsNotFound(err))
	_, err = svc.GetRawContent(ctx, "nope")
	assert.True(t, skilltypes.IsNotFound(err))
}

func TestPublish(t *testing.T) {
	r := record("eeeeeeeeee", "drafted", skilltypes.CategoryDev, false, 0)
	svc := newTestService(t, r)
	ctx := context.Background()

	published, err := svc.Publish(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, published.Published)

	summaries, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	_, err = svc.Publish(ctx, "missing")
	assert.True(t, skilltypes.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	r := record("ffffffffff", "editable", skilltypes.CategoryDev, true, 0)
	svc := newTestService(t, r)
	ctx := context.Background()

	updated, err := svc.Update(ctx, r.ID, skilltypes.Patch{
		"id":        "stolen",
		"name":      "Better Name!",
		"category":  "security",
		"prompt":    "rewritten history",
		"createdAt": "2030-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, r.ID, updated.ID)
	assert.Equal(t, "better-name-", updated.Name)
	assert.Equal(t, skilltypes.CategorySecurity, updated.Category)
	assert.Equal(t, r.Prompt, updated.Prompt)
	assert.True(t, r.CreatedAt.Equal(updated.CreatedAt))

	tests := []struct {
		name  string
		patch skilltypes.Patch
	}{
		{"unknown category", skilltypes.Patch{"category": "Marketing"}},
		{"non string name", skilltypes.Patch{"name": 42}},
		{"empty name", skilltypes.Patch{"name": ""}},
		{"non bool published", skilltypes.Patch{"published": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, r.ID, tt.patch)
			assert.Equal(t, skilltypes.KindValidation, skilltypes.KindOf(err))
		})
	}

	_, err = svc.Update(ctx, "missing", skilltypes.Patch{"name": "x"})
	assert.True(t, skilltypes.IsNotFound(err))
}

func TestExport(t *testing.T) {
	svc := newTestService(t,
		record("1111111111", "linter", skilltypes.CategoryDev, true, 0),
		record("2222222222", "linter", skilltypes.CategoryDev, true, time.Minute),
		record("3333333333", "docs-writer", skilltypes.CategoryDocs, true, time.Hour),
	)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), &buf, []string{"1111111111", "2222222222", "3333333333", "1111111111"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	names, contents := readArchive(t, buf.Bytes())
	assert.Equal(t, []string{"docs-writer/SKILL.md", "linter-2222222222/SKILL.md", "linter/SKILL.md"}, names)
	assert.Contains(t, contents["docs-writer/SKILL.md"], "# docs-writer")
}

func TestExportSuffixedNameCollision(t *testing.T) {
	svc := newTestService(t,
		record("aaaaaaaaaa", "x", skilltypes.CategoryDev, true, 0),
		record("cccccccccc", "x-bbbbbbbbbb", skilltypes.CategoryDev, true, 0),
		record("bbbbbbbbbb", "x", skilltypes.CategoryDev, true, 0),
		record("dddddddddd", "x-bbbbbbbbbb-2", skilltypes.CategoryDev, true, 0),
	)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), &buf, []string{"aaaaaaaaaa", "cccccccccc", "dddddddddd", "bbbbbbbbbb"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	names, contents := readArchive(t, buf.Bytes())
	assert.Equal(t, []string{
		"x-bbbbbbbbbb-2/SKILL.md",
		"x-bbbbbbbbbb-3/SKILL.md",
		"x-bbbbbbbbbb/SKILL.md",
		"x/SKILL.md",
	}, names)
	assert.Contains(t, contents["x-bbbbbbbbbb/SKILL.md"], "# x-bbbbbbbbbb\n")
	assert.Contains(t, contents["x-bbbbbbbbbb-2/SKILL.md"], "# x-bbbbbbbbbb-2")
	assert.Contains(t, contents["x-bbbbbbbbbb-3/SKILL.md"], "# x\n")
}

func readArchive(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	contents := map[string]string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(body)
	}
	sort.Strings(names)
	return names, contents
}

func TestExportErrors(t *testing.T) {
	svc := newTestService(t, record("1111111111", "linter", skilltypes.CategoryDev, true, 0))

	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), &buf, []string{"1111111111", "missing"})
	assert.True(t, skilltypes.IsNotFound(err))
	assert.Zero(t, buf.Len())

	_, err = svc.Export(context.Background(), &buf, nil)
	assert.Equal(t, skilltypes.KindValidation, skilltypes.KindOf(err))
}
