// Package cli implements the pagepack command-line interface.
//
// This package provides commands for packing a multi-page document into
// its single-page portable form, unpacking it back, inspecting document
// structure, and running the HTTP server. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - pack: Collapse all pages into containers on the staging page
//   - unpack: Expand staging containers back into pages
//   - pages: List a document's pages (optionally interactive)
//   - inspect: Render document structure as DOT or SVG
//   - serve: Run the HTTP message server
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pagepack/pagepack/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "pagepack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pagepack folds multi-page documents into one portable page",
		Long:         `Pagepack collapses every page of a document into stacked containers on a single staging page, so the whole document can be copied as one unit, and unpacks them back into full pages afterwards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.packCommand())
	root.AddCommand(c.unpackCommand())
	root.AddCommand(c.pagesCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
