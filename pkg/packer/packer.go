// Package packer implements the pack/unpack transformation engine.
//
// Packing collapses every page of a document into stacked frame
// containers on a single reserved staging page, so the whole document can
// be selected and copied as one clipboard unit. Unpacking reverses this:
// one page per container, original names restored where recoverable, and
// the emptied containers destroyed.
//
// # Architecture
//
// The engine is a pure transformation over an explicit [doc.Document];
// it holds no document state of its own. Both operations run to
// completion synchronously:
//
//	engine := packer.New(logger, nil)
//	res, err := engine.Pack(ctx, document)
//	if err != nil && !errors.IsRecovered(err) {
//	    return err
//	}
//
// Recovered outcomes (nothing to pack, staging page missing, nothing to
// unpack) are *errors.Error values with dedicated codes; they abort the
// operation cleanly with no mutation and surface to the user as
// notifications rather than failures. Any other error indicates a real
// fault and leaves the document in a partial state from which a retry can
// make forward progress: containers and pages are processed
// independently, front to back.
package packer

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/errors"
	"github.com/pagepack/pagepack/pkg/observability"
)

const (
	// StagingPageName is the reserved name identifying the staging page.
	// A page whose trimmed name equals this sentinel is the staging page;
	// there is at most one per document under the engine's ownership.
	StagingPageName = "[Packed Pages]"

	// OriginalNameKey is the metadata key under which a container
	// remembers its source page's name. The key is namespaced to avoid
	// colliding with unrelated annotations and must stay stable across
	// versions for round-trip correctness.
	OriginalNameKey = "pagepack:original-page-name"

	// ContainerSpacing is the vertical gap between stacked containers on
	// the staging page.
	ContainerSpacing = 200.0
)

// PackResult reports the outcome of a pack operation.
type PackResult struct {
	// Containers is the number of containers created on the staging page,
	// one per source page.
	Containers int
}

// UnpackResult reports the outcome of an unpack operation.
type UnpackResult struct {
	// Pages is the number of pages created from staging containers.
	Pages int
}

// Engine runs pack and unpack transformations over documents. It is
// stateless apart from its logger and notifier, so one Engine can serve
// any number of documents; the documents themselves must not be mutated
// concurrently.
type Engine struct {
	logger   *log.Logger
	notifier Notifier
}

// New creates an engine. A nil logger falls back to log.Default; a nil
// notifier falls back to a logging notifier so user-visible outcomes are
// never silently dropped.
func New(logger *log.Logger, notifier Notifier) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Engine{logger: logger, notifier: notifier}
}

// Pack collapses every non-staging page of d into one frame container on
// the staging page. Source pages are cloned, never mutated; repeating a
// pack replaces the previous staging content rather than accumulating.
//
// Returns ErrCodeNothingToPack (recovered, no mutation) when the document
// has no non-staging pages.
func (e *Engine) Pack(ctx context.Context, d *doc.Document) (*PackResult, error) {
	start := time.Now()
	observability.Engine().OnPackStart(ctx, d.NumPages())

	res, err := e.pack(d)

	observability.Engine().OnPackComplete(ctx, resultContainers(res), time.Since(start), err)
	return res, err
}

func (e *Engine) pack(d *doc.Document) (*PackResult, error) {
	sources := sourcePages(d)
	if len(sources) == 0 {
		err := errors.New(errors.ErrCodeNothingToPack, "no pages to pack")
		e.notifier.Notify("Nothing to pack: the document has no pages outside " + StagingPageName)
		return nil, err
	}

	staging := ensureStagingPage(d)
	clearPage(staging)
	d.SetCurrentPage(staging)

	containers := make([]*doc.Node, 0, len(sources))
	nextY := 0.0
	for _, page := range sources {
		container, err := packPage(staging, page, nextY)
		if err != nil {
			return nil, err
		}
		nextY = container.Y + container.Height + ContainerSpacing
		containers = append(containers, container)

		e.logger.Debug("packed page",
			"page", page.Name,
			"nodes", container.NumChildren())
	}

	e.notifier.SelectAndFrame(staging, containers)
	e.notifier.Notify(notifyPacked(len(containers)))

	e.logger.Info("packed document",
		"pages", len(containers),
		"staging", StagingPageName)

	return &PackResult{Containers: len(containers)}, nil
}

// packPage creates one container on the staging page for a single source
// page: named after the page, tagged with the original name, holding a
// clone of every top-level node in source order. The source page is left
// untouched. An empty page still produces an (empty) container so it
// round-trips back to an empty page.
func packPage(staging *doc.Page, page *doc.Page, y float64) (*doc.Node, error) {
	container := doc.NewNode(doc.NodeTypeFrame, page.Name)
	container.Meta[OriginalNameKey] = page.Name
	container.X = 0
	container.Y = y

	if err := staging.AppendChild(container); err != nil {
		return nil, err
	}

	for _, n := range page.Children() {
		if err := container.AppendChild(n.Clone()); err != nil {
			return nil, err
		}
	}
	container.Width, container.Height = contentBounds(container)
	return container, nil
}

// contentBounds returns the extent of a container's children, measured
// from the container origin. Empty containers have zero extent.
func contentBounds(container *doc.Node) (w, h float64) {
	for _, c := range container.Children() {
		if right := c.X + c.Width; right > w {
			w = right
		}
		if bottom := c.Y + c.Height; bottom > h {
			h = bottom
		}
	}
	return w, h
}

// sourcePages returns all pages except the staging page, in document
// order.
func sourcePages(d *doc.Document) []*doc.Page {
	var out []*doc.Page
	for _, p := range d.Pages() {
		if !IsStagingPage(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsStagingPage reports whether p is the reserved staging page. The
// comparison rule (trim surrounding whitespace, then exact match against
// the sentinel) has this single definition site.
func IsStagingPage(p *doc.Page) bool {
	return strings.TrimSpace(p.Name) == StagingPageName
}

// findStagingPage returns the staging page, or nil if the document has
// none. It never creates one.
func findStagingPage(d *doc.Document) *doc.Page {
	for _, p := range d.Pages() {
		if IsStagingPage(p) {
			return p
		}
	}
	return nil
}

// ensureStagingPage returns the document's staging page, creating and
// appending it if absent. Reuse keeps repeated packs from accumulating
// staging pages.
func ensureStagingPage(d *doc.Document) *doc.Page {
	if p := findStagingPage(d); p != nil {
		return p
	}
	return d.NewPage(StagingPageName)
}

// clearPage destroys every top-level node of the page, leaving its name
// and identity intact. Other pages are never affected.
func clearPage(p *doc.Page) {
	p.RemoveChildren()
}

func resultContainers(res *PackResult) int {
	if res == nil {
		return 0
	}
	return res.Containers
}
