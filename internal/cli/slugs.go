package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/notionblog/notionblog/internal/config"
	"github.com/notionblog/notionblog/internal/posts"
	"github.com/notionblog/notionblog/internal/slugindex"
	"github.com/notionblog/notionblog/pkg/logger"
)

func newSlugsCommand(root *rootOptions) *cobra.Command {
	var (
		asJSON   bool
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "slugs",
		Short: "Build the slug index once and print it",
		Long: `Query the post database, build the slug index and print every entry.
With --json the output can be fed back through --from-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.envFiles...)
			if err != nil {
				return err
			}

			var source posts.Source
			if fromFile != "" {
				source, err = posts.LoadFile(fromFile)
			} else {
				if err := cfg.RequireNotion(); err != nil {
					return err
				}
				source, err = newNotionSource(cfg)
			}
			if err != nil {
				return err
			}

			logCfg := cfg.Log
			logCfg.Format = logger.FormatText
			logCfg.Output = cmd.ErrOrStderr()
			log := logger.New(logCfg)

			idx, err := slugindex.NewBuilder(source,
				slugindex.WithMalformedPolicy(cfg.MalformedPolicy()),
				slugindex.WithLogger(log),
			).Build(cmd.Context())
			if err != nil {
				return err
			}
			log.Debug("slug index built", slog.Int("entries", idx.Len()))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(idx.Entries())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tID\tTITLE")
			for _, e := range idx.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Slug, e.ID, e.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as a JSON array")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "read posts from a JSON file instead of Notion")
	return cmd
}
