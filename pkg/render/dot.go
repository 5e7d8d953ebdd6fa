// Package render converts document trees to Graphviz diagrams for
// inspection. The output shows the page/node hierarchy, with the staging
// page and its containers visually distinguished, which makes it easy to
// see what a pack or unpack did to a document.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/packer"
)

// Options configures document rendering.
type Options struct {
	// Detailed includes node geometry and metadata in labels.
	// When false, only type and name are shown.
	Detailed bool
}

// ToDOT converts a document to Graphviz DOT format. Pages are drawn as
// folder-shaped roots with their node trees below; the staging page is
// shaded, and frame containers get a bold outline.
func ToDOT(d *doc.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph document {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, p := range d.Pages() {
		attrs := []string{
			fmt.Sprintf("label=%q", pageLabel(d, p)),
			"shape=folder",
		}
		if packer.IsStagingPage(p) {
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.ID, strings.Join(attrs, ", "))
		for _, n := range p.Children() {
			writeNode(&buf, p.ID, n, opts)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, parentID string, n *doc.Node, opts Options) {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed))}
	if n.IsFrame() {
		attrs = append(attrs, "penwidth=2")
	}
	if n.Hidden {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	fmt.Fprintf(buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	fmt.Fprintf(buf, "  %q -> %q;\n", parentID, n.ID)
	for _, c := range n.Children() {
		writeNode(buf, n.ID, c, opts)
	}
}

func pageLabel(d *doc.Document, p *doc.Page) string {
	if d.CurrentPage() == p {
		return p.Name + " (current)"
	}
	return p.Name
}

func nodeLabel(n *doc.Node, detailed bool) string {
	label := fmt.Sprintf("%s\n%s", n.Type, n.Name)
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("at (%.0f, %.0f) %gx%g", n.X, n.Y, n.Width, n.Height)}
	if original, ok := n.Meta[packer.OriginalNameKey]; ok {
		parts = append(parts, fmt.Sprintf("original: %s", original))
	}
	if n.Locked {
		parts = append(parts, "locked")
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
