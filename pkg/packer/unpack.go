package packer

import (
	"context"
	"fmt"
	"time"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/errors"
	"github.com/pagepack/pagepack/pkg/observability"
)

// Unpack expands every top-level frame container on the staging page back
// into a full page: one page per container, named after the container's
// recorded original name (resolved against current page names), with the
// container's content moved - not cloned - onto the new page. Emptied
// containers are destroyed; non-frame nodes on the staging page are left
// where they are.
//
// Returns ErrCodeStagingMissing when the document has no staging page and
// ErrCodeNothingToUnpack when the staging page holds no top-level frames.
// Both are recovered outcomes with no mutation. After a partial failure,
// re-running resumes with the containers that were not yet processed.
func (e *Engine) Unpack(ctx context.Context, d *doc.Document) (*UnpackResult, error) {
	start := time.Now()
	observability.Engine().OnUnpackStart(ctx)

	res, err := e.unpack(d)

	observability.Engine().OnUnpackComplete(ctx, resultPages(res), time.Since(start), err)
	return res, err
}

func (e *Engine) unpack(d *doc.Document) (*UnpackResult, error) {
	staging := findStagingPage(d)
	if staging == nil {
		err := errors.New(errors.ErrCodeStagingMissing, "no %q page found", StagingPageName)
		e.notifier.Notify(fmt.Sprintf("Cannot unpack: no %q page in this document", StagingPageName))
		return nil, err
	}
	d.SetCurrentPage(staging)

	containers := stagedContainers(staging)
	if len(containers) == 0 {
		err := errors.New(errors.ErrCodeNothingToUnpack, "no containers on %q", StagingPageName)
		e.notifier.Notify(fmt.Sprintf("Nothing to unpack: %q has no containers", StagingPageName))
		return nil, err
	}

	var last *doc.Page
	created := 0
	for _, container := range containers {
		page, err := unpackContainer(d, container)
		if err != nil {
			return nil, err
		}
		last = page
		created++

		e.logger.Debug("unpacked container",
			"container", container.Name,
			"page", page.Name,
			"nodes", page.NumChildren())
	}

	d.SetCurrentPage(last)
	e.notifier.Notify(notifyUnpacked(created))

	e.logger.Info("unpacked document",
		"pages", created,
		"staging", StagingPageName)

	return &UnpackResult{Pages: created}, nil
}

// unpackContainer turns one staged container into a page: the preferred
// name comes from the original-name metadata when present, falling back
// to the container's current name; it is resolved against the document's
// page names at this point, so pages created earlier in the same run
// count. Content moves by reparenting, preserving order, and the emptied
// container is destroyed. Each container is processed independently, so
// an aborted run leaves the remainder intact for a retry.
func unpackContainer(d *doc.Document, container *doc.Node) (*doc.Page, error) {
	preferred := container.Meta[OriginalNameKey]
	if preferred == "" {
		preferred = container.Name
	}

	page := d.NewPage(ResolveUniqueName(preferred, nameSet(d)))
	for _, n := range container.Children() {
		if err := page.AppendChild(n); err != nil {
			return nil, err
		}
	}
	container.Remove()
	return page, nil
}

// stagedContainers returns the staging page's top-level frame nodes in
// order. Only direct children count: frames nested inside packed content
// are ordinary content, never pack units. Other node types are skipped
// silently - they are not part of this protocol and stay on the staging
// page.
func stagedContainers(staging *doc.Page) []*doc.Node {
	var out []*doc.Node
	for _, n := range staging.Children() {
		if n.IsFrame() {
			out = append(out, n)
		}
	}
	return out
}

func nameSet(d *doc.Document) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range d.PageNames() {
		set[name] = struct{}{}
	}
	return set
}

func resultPages(res *UnpackResult) int {
	if res == nil {
		return 0
	}
	return res.Pages
}
