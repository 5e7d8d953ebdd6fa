package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/render"
)

// inspectCommand creates the inspect command for rendering document
// structure.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <document.json>",
		Short: "Render document structure as a DOT or SVG diagram",
		Long: `Render the page/node tree of a document as a Graphviz diagram.

The staging page is shaded and containers are outlined, which makes the
effect of a pack or unpack easy to see at a glance.

Examples:
  pagepack inspect doc.json                      # DOT to stdout
  pagepack inspect doc.json --format svg -o doc.svg
  pagepack inspect doc.json --detailed           # include geometry and metadata`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := docio.Import(args[0])
			if err != nil {
				printError("%v", err)
				return err
			}

			dot := render.ToDOT(d, render.Options{Detailed: detailed})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(cmd.Context(), dot)
				if err != nil {
					printError("%v", err)
					return err
				}
			default:
				err := fmt.Errorf("unknown format %q (want dot or svg)", format)
				printError("%v", err)
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				printError("%v", err)
				return err
			}
			printSuccess("Rendered %s", format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include geometry and metadata in labels")
	return cmd
}
