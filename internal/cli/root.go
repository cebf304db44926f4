// Package cli implements the notionblog command line.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
}

// NewRootCommand builds the notionblog command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notionblog",
		Short: "Slug resolution service for a Notion-backed blog",
		Long: `notionblog maps Notion page ids to human-readable post slugs, serves the
slug lookup API and redirects id-based post URLs to their canonical slug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil,
		"dotenv files to load before reading the environment (default .env)")

	cmd.AddCommand(
		newServeCommand(opts),
		newSlugsCommand(opts),
		newSlugifyCommand(),
	)
	return cmd
}
