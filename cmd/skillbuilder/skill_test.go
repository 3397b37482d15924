package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/skillbuilder/skillbuilder/pkg/catalog"
	"github.com/skillbuilder/skillbuilder/pkg/config"
	"github.com/skillbuilder/skillbuilder/pkg/library"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

func useLibrary(t *testing.T, store string) string {
	t.Helper()
	path := t.TempDir()
	if store == library.StoreTypeSQLite {
		path = filepath.Join(path, "skills.db")
	}

	previous := appConfig
	appConfig = config.Config{Library: library.Config{Store: store, Path: path, UniqueIDs: true}}
	t.Cleanup(func() { appConfig = previous })
	return path
}

func seedRecords(t *testing.T, records ...skilltypes.Record) {
	t.Helper()
	ctx := context.Background()
	store, err := openStore(ctx)
	require.NoError(t, err)
	defer store.Close()

	for _, r := range records {
		require.NoError(t, store.Put(ctx, r))
	}
}

func testRecord(name string, published bool) skilltypes.Record {
	return skilltypes.Record{
		ID:          skilltypes.GenerateID(),
		Name:        name,
		Description: "Description of " + name,
		Category:    skilltypes.CategoryTesting,
		Content:     "---\nname: " + name + "\n---\n\n# " + name + "\n",
		Prompt:      "make " + name,
		CreatedAt:   time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Published:   published,
	}
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestRenderRecord(t *testing.T) {
	record := testRecord("api-tester", true)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderRecord(&buf, record, "json"))

		var decoded skilltypes.Record
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, record, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderRecord(&buf, record, "yaml"))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, record.ID, decoded["id"])
		assert.Equal(t, "api-tester", decoded["name"])
		assert.Equal(t, "Testing", decoded["category"])
		assert.Contains(t, decoded, "createdAt")
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderRecord(&buf, record, "text"))
		assert.Contains(t, buf.String(), "Name:        api-tester")
		assert.Contains(t, buf.String(), "# api-tester")
	})

	t.Run("text defaults category", func(t *testing.T) {
		record := record
		record.Category = ""
		var buf bytes.Buffer
		require.NoError(t, renderRecord(&buf, record, ""))
		assert.Contains(t, buf.String(), "Category:    Dev")
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.ErrorContains(t, renderRecord(&bytes.Buffer{}, record, "toml"), "unsupported format")
	})
}

func TestEditPatch(t *testing.T) {
	contentFile := filepath.Join(t.TempDir(), "SKILL.md")
	require.NoError(t, os.WriteFile(contentFile, []byte("new content"), 0o644))

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  skilltypes.Patch
	}{
		{name: "no flags", want: skilltypes.Patch{}},
		{
			name: "text fields",
			args: []string{"--name", "Renamed", "--category", "Docs"},
			want: skilltypes.Patch{"name": "Renamed", "category": "Docs"},
		},
		{
			name: "content file",
			args: []string{"--content-file", contentFile, "--published=false"},
			want: skilltypes.Patch{"content": "new content", "published": false},
		},
		{
			name:  "content from stdin",
			args:  []string{"--content-file", "-"},
			stdin: "piped content",
			want:  skilltypes.Patch{"content": "piped content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "edit"}
			addEditFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			patch, err := editPatch(cmd, strings.NewReader(tt.stdin))
			require.NoError(t, err)
			assert.Equal(t, tt.want, patch)
		})
	}

	t.Run("missing content file", func(t *testing.T) {
		cmd := &cobra.Command{Use: "edit"}
		addEditFlags(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--content-file", filepath.Join(t.TempDir(), "absent")}))

		_, err := editPatch(cmd, strings.NewReader(""))
		assert.ErrorContains(t, err, "failed to read content")
	})
}

func TestRecordDiff(t *testing.T) {
	before := testRecord("old-name", false)
	after := before
	after.Name = "new-name"
	after.Published = true

	diff := recordDiff(before, after)
	assert.Contains(t, diff, "-Name:        old-name")
	assert.Contains(t, diff, "+Name:        new-name")
	assert.Contains(t, diff, "+Published:   true")

	assert.Empty(t, recordDiff(before, before))
}

func TestSkillShowAndRaw(t *testing.T) {
	useLibrary(t, library.StoreTypeJSON)
	record := testRecord("log-parser", true)
	seedRecords(t, record)

	out, err := runCommand(t, skillRawCmd, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Content, out)

	out, err = runCommand(t, skillShowCmd, record.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "ID:          "+record.ID)

	_, err = runCommand(t, skillShowCmd, "missingid0")
	assert.True(t, skilltypes.IsNotFound(err))
}

func TestSkillPublishAndEdit(t *testing.T) {
	useLibrary(t, library.StoreTypeSQLite)
	record := testRecord("draft-skill", false)
	seedRecords(t, record)

	_, err := runCommand(t, skillPublishCmd, record.ID)
	require.NoError(t, err)

	require.NoError(t, skillEditCmd.Flags().Set("name", "Renamed Skill"))
	t.Cleanup(func() {
		skillEditCmd.Flags().Set("name", "")
		skillEditCmd.Flags().Lookup("name").Changed = false
	})
	_, err = runCommand(t, skillEditCmd, record.ID)
	require.NoError(t, err)

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)
	assert.Equal(t, "renamed-skill", got.Name)
	assert.Equal(t, record.Content, got.Content)
}

func TestSkillExport(t *testing.T) {
	useLibrary(t, library.StoreTypeJSON)
	first, second := testRecord("first-skill", true), testRecord("second-skill", true)
	seedRecords(t, first, second)

	output := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, skillExportCmd.Flags().Set("output", output))
	t.Cleanup(func() { skillExportCmd.Flags().Set("output", "skills.zip") })

	_, err := runCommand(t, skillExportCmd, first.ID, second.ID)
	require.NoError(t, err)

	archive, err := zip.OpenReader(output)
	require.NoError(t, err)
	defer archive.Close()

	var names []string
	for _, f := range archive.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"first-skill/SKILL.md", "second-skill/SKILL.md"}, names)
}

func TestExportArchiveCountsUniqueSkills(t *testing.T) {
	useLibrary(t, library.StoreTypeJSON)
	record := testRecord("repeated-skill", true)
	seedRecords(t, record)

	output := filepath.Join(t.TempDir(), "out.zip")
	err := withCatalog(context.Background(), func(svc *catalog.Service) error {
		n, err := exportArchive(context.Background(), svc, []string{record.ID, record.ID}, output)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)

	archive, err := zip.OpenReader(output)
	require.NoError(t, err)
	defer archive.Close()
	assert.Len(t, archive.File, 1)

	missing := filepath.Join(t.TempDir(), "missing.zip")
	err = withCatalog(context.Background(), func(svc *catalog.Service) error {
		_, err := exportArchive(context.Background(), svc, []string{"nope"}, missing)
		return err
	})
	assert.True(t, skilltypes.IsNotFound(err))
	assert.NoFileExists(t, missing)
}

func TestSkillImport(t *testing.T) {
	useLibrary(t, library.StoreTypeJSON)

	root := t.TempDir()
	dir := filepath.Join(root, "pdf-helper")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(`---
name: PDF Helper
description: Extracts text from PDF files
category: Docs
---

# PDF Helper
`), 0o644))

	_, err := runCommand(t, skillImportCmd, root)
	require.NoError(t, err)

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pdf-helper", records[0].Name)
	assert.Equal(t, skilltypes.CategoryDocs, records[0].Category)
	assert.True(t, records[0].Published)
}
