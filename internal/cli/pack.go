package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	pkgerrors "github.com/pagepack/pagepack/pkg/errors"
	"github.com/pagepack/pagepack/pkg/packer"
)

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack <document.json>",
		Short: "Collapse all pages into containers on the staging page",
		Long: fmt.Sprintf(`Collapse every page of a document into one container each on the
reserved %q page, stacked vertically, so the whole document can be
selected and copied as a single unit.

Source pages are never modified; running pack again replaces the staging
content instead of accumulating it.`, packer.StagingPageName),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.transformFile(cmd.Context(), args[0], output, "Packing pages",
				func(ctx context.Context, d *doc.Document) (int, error) {
					res, err := packer.New(c.Logger, packer.NoopNotifier{}).Pack(ctx, d)
					if res != nil {
						return res.Containers, err
					}
					return 0, err
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to rewriting the input)")
	return cmd
}

// transformFile imports a document, applies op, and exports the result.
// Recovered engine outcomes are shown as warnings and leave the file
// untouched (the document was not mutated).
func (c *CLI) transformFile(ctx context.Context, input, output, activity string, op func(context.Context, *doc.Document) (int, error)) error {
	if output == "" {
		output = input
	}

	d, err := docio.Import(input)
	if err != nil {
		printError("%v", err)
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, activity+"...")
	spinner.Start()

	count, err := op(ctx, d)
	if err != nil {
		if pkgerrors.IsRecovered(err) {
			spinner.Stop()
			printWarning("%s", pkgerrors.UserMessage(err))
			return nil
		}
		spinner.StopWithError(pkgerrors.UserMessage(err))
		return err
	}

	if err := docio.Export(output, d); err != nil {
		spinner.StopWithError(err.Error())
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("%s: %d", activity, count))
	printFile(output)
	prog.done(activity)
	return nil
}
