package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notionblog/notionblog/pkg/slug"
)

func newSlugifyCommand() *cobra.Command {
	var (
		maxLength int
		ascii     bool
	)

	cmd := &cobra.Command{
		Use:     "slugify <title...>",
		Short:   "Print the slug for a title",
		Example: "  notionblog slugify \"Hello, World!\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []slug.Option
			if maxLength > 0 {
				opts = append(opts, slug.MaxLength(maxLength))
			}
			if ascii {
				opts = append(opts, slug.ASCIIOnly())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.Make(strings.Join(args, " "), opts...))
			return err
		},
	}

	cmd.Flags().IntVar(&maxLength, "max-length", 0, "cap the slug at this many runes")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "drop characters outside ASCII")
	return cmd
}
