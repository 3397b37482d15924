package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/presenter"
)

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a skill from a description and save it to the library",
	Long: `Run the generation pipeline locally: the description is sanitized, sent
to the configured LLM provider, and the resulting SKILL.md is saved to the
library as a published skill.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		credential, _ := cmd.Flags().GetString("api-key")
		quiet, _ := cmd.Flags().GetBool("quiet")

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.G(ctx).WithError(err).Warn("failed to close skill library")
			}
		}()

		builder, err := newBuilder(store)
		if err != nil {
			return err
		}

		record, err := builder.Build(ctx, strings.Join(args, " "), credential)
		if err != nil {
			return errors.Wrap(err, "failed to generate skill")
		}

		presenter.Success(fmt.Sprintf("Saved skill %s (%s)", record.Name, record.ID))
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), record.Content)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("api-key", "", "Provider API key for this request only (never stored)")
	generateCmd.Flags().BoolP("quiet", "q", false, "Do not print the generated document")
}
