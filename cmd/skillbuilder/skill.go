package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skillbuilder/skillbuilder/pkg/catalog"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
	"github.com/skillbuilder/skillbuilder/pkg/skills"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse and manage skills in the library",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills in the library",
	Long:  `List published skills, newest first. Use --all to include unpublished skills.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		search, _ := cmd.Flags().GetString("search")
		category, _ := cmd.Flags().GetString("category")
		all, _ := cmd.Flags().GetBool("all")

		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			var (
				summaries []skilltypes.Summary
				err       error
			)
			if all {
				summaries, err = svc.List(cmd.Context())
			} else {
				summaries, err = svc.ListPublished(cmd.Context())
			}
			if err != nil {
				return err
			}

			summaries = catalog.Filter(summaries, catalog.Query{Search: search, Category: category})
			if len(summaries) == 0 {
				presenter.Info("No skills found")
				return nil
			}
			presenter.Table([]string{"ID", "NAME", "CATEGORY", "DESCRIPTION"}, summaryRows(summaries))
			return nil
		})
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a skill record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			record, err := svc.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecord(cmd.OutOrStdout(), record, format)
		})
	},
}

var skillRawCmd = &cobra.Command{
	Use:   "raw <id>",
	Short: "Print the SKILL.md content of a skill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			content, err := svc.GetRawContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		})
	},
}

var skillPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Mark a skill as published",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			record, err := svc.Publish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Published %s (%s)", record.Name, record.ID))
			return nil
		})
	},
}

var skillEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of a skill",
	Long: `Update the name, description, category or content of a skill. The
content is read from --content-file ("-" for stdin) and the resulting change
is shown as a unified diff.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := editPatch(cmd, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if len(patch) == 0 {
			return errors.New("nothing to update: pass at least one of --name, --description, --category, --content-file, --published")
		}

		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			before, err := svc.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			after, err := svc.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}

			presenter.Diff(recordDiff(before, after))
			presenter.Success(fmt.Sprintf("Updated %s (%s)", after.Name, after.ID))
			return nil
		})
	},
}

var skillExportCmd = &cobra.Command{
	Use:   "export <id>...",
	Short: "Export skills to a zip archive",
	Long:  `Write a zip archive holding <name>/SKILL.md for every given skill.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		return withCatalog(cmd.Context(), func(svc *catalog.Service) error {
			n, err := exportArchive(cmd.Context(), svc, args, output)
			if err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Exported %d skill(s) to %s", n, output))
			return nil
		})
	},
}

// exportArchive writes the archive for ids to output and returns how many
// skills it holds. The file is left untouched when the export fails.
func exportArchive(ctx context.Context, svc *catalog.Service, ids []string, output string) (int, error) {
	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, ids)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", output)
	}
	return n, nil
}

var skillImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import SKILL.md files from a directory tree",
	Long: `Import every SKILL.md found under <dir> as a new published skill. The
name, description and category are read from the YAML front matter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.G(ctx).WithError(err).Warn("failed to close skill library")
			}
		}()

		imported, err := skills.NewImporter(store).Import(ctx, args[0])
		if len(imported) > 0 {
			presenter.Success(fmt.Sprintf("Imported %d skill(s)", len(imported)))
		}
		if err != nil {
			return errors.Wrap(err, "some skills could not be imported")
		}
		if len(imported) == 0 {
			presenter.Warning(fmt.Sprintf("No SKILL.md files found under %s", args[0]))
		}
		return nil
	},
}

func summaryRows(summaries []skilltypes.Summary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.ID, s.Name, string(s.Category), s.Description})
	}
	return rows
}

// renderRecord writes record to w as json, yaml or a short text block
func renderRecord(w io.Writer, record skilltypes.Record, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return errors.Wrap(err, "failed to encode skill as yaml")
		}
		return enc.Close()
	case "", "text":
		fmt.Fprintf(w, "ID:          %s\n", record.ID)
		fmt.Fprintf(w, "Name:        %s\n", record.Name)
		fmt.Fprintf(w, "Description: %s\n", record.Description)
		fmt.Fprintf(w, "Category:    %s\n", record.Category.OrDefault())
		fmt.Fprintf(w, "Published:   %t\n", record.Published)
		fmt.Fprintf(w, "Created:     %s\n", record.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(w, "\n%s\n", record.Content)
		return nil
	default:
		return errors.Errorf("unsupported format %q (want text, json or yaml)", format)
	}
}

// editPatch builds an update from the flags that were set
func editPatch(cmd *cobra.Command, stdin io.Reader) (skilltypes.Patch, error) {
	patch := skilltypes.Patch{}
	flags := cmd.Flags()

	for flag, field := range map[string]string{
		"name":        "name",
		"description": "description",
		"category":    "category",
	} {
		if flags.Changed(flag) {
			value, _ := flags.GetString(flag)
			patch[field] = value
		}
	}

	if flags.Changed("published") {
		published, _ := flags.GetBool("published")
		patch["published"] = published
	}

	if flags.Changed("content-file") {
		path, _ := flags.GetString("content-file")
		var (
			content []byte
			err     error
		)
		if path == "-" {
			content, err = io.ReadAll(stdin)
		} else {
			content, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read content")
		}
		patch["content"] = string(content)
	}

	return patch, nil
}

// recordDiff renders the changes between two versions of a record as a
// unified diff over their text rendering
func recordDiff(before, after skilltypes.Record) string {
	var oldText, newText strings.Builder
	_ = renderRecord(&oldText, before, "text")
	_ = renderRecord(&newText, after, "text")
	return udiff.Unified("a/"+before.ID, "b/"+after.ID, oldText.String(), newText.String())
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("category", "", "New category")
	cmd.Flags().String("content-file", "", `File holding the new SKILL.md content ("-" for stdin)`)
	cmd.Flags().Bool("published", false, "Set the published flag")
}

func init() {
	skillListCmd.Flags().String("search", "", "Only show skills whose name or description contains this text")
	skillListCmd.Flags().String("category", "", "Only show skills in this category")
	skillListCmd.Flags().Bool("all", false, "Include unpublished skills")

	skillShowCmd.Flags().String("format", "text", "Output format (text, json or yaml)")

	addEditFlags(skillEditCmd)

	skillExportCmd.Flags().StringP("output", "o", "skills.zip", "Path of the zip archive to write")

	for _, cmd := range []*cobra.Command{
		skillListCmd,
		skillShowCmd,
		skillRawCmd,
		skillPublishCmd,
		skillEditCmd,
		skillExportCmd,
		skillImportCmd,
	} {
		skillCmd.AddCommand(withTracing(cmd))
	}
}
