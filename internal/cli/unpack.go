package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/packer"
)

// unpackCommand creates the unpack command.
func (c *CLI) unpackCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "unpack <document.json>",
		Short: "Expand staging containers back into pages",
		Long: fmt.Sprintf(`Expand every container on the %q page back into a full page.

Each container becomes one page named after the page it was packed from;
name collisions get an " (Imported N)" suffix. The emptied containers are
removed, and anything else on the staging page is left alone.`, packer.StagingPageName),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.transformFile(cmd.Context(), args[0], output, "Unpacking pages",
				func(ctx context.Context, d *doc.Document) (int, error) {
					res, err := packer.New(c.Logger, packer.NoopNotifier{}).Unpack(ctx, d)
					if res != nil {
						return res.Pages, err
					}
					return 0, err
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to rewriting the input)")
	return cmd
}
