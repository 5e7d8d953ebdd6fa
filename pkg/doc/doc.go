// Package doc provides the in-memory document model that pagepack
// operates on: a document is an ordered list of pages, and each page owns
// an ordered tree of nodes.
//
// The model is deliberately explicit - every operation takes the objects
// it mutates as parameters, so transformations can be tested against
// constructed in-memory documents without any ambient state.
//
// Ownership rules: a node belongs to at most one parent (page or node) at
// a time. [Node.AppendChild] and [Page.AppendChild] move nodes between
// parents; [Node.Clone] creates independent copies with fresh identities.
//
// The model is not safe for concurrent mutation without external
// synchronization; pagepack runs exactly one transformation at a time.
package doc

import "github.com/google/uuid"

// Page is a top-level canvas in a document. It has a display name and an
// ordered list of top-level nodes. Page names are not required to be
// unique; uniqueness where needed is the caller's concern.
type Page struct {
	ID   string
	Name string

	children []*Node
}

// NewPage creates a detached page with a fresh unique ID. Most callers
// should use [Document.NewPage] instead, which also appends the page.
func NewPage(name string) *Page {
	return &Page{ID: uuid.NewString(), Name: name}
}

// Children returns the page's top-level nodes in order. The returned
// slice is a copy.
func (p *Page) Children() []*Node {
	out := make([]*Node, len(p.children))
	copy(out, p.children)
	return out
}

// NumChildren returns the number of top-level nodes on the page.
func (p *Page) NumChildren() int { return len(p.children) }

// AppendChild attaches n as the last top-level node of the page,
// detaching it from its previous parent first.
func (p *Page) AppendChild(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	attach(p, n)
	return nil
}

// RemoveChildren destroys every top-level node on the page, leaving the
// page itself (name and identity) intact. Descendants are destroyed with
// their roots.
func (p *Page) RemoveChildren() {
	for _, n := range p.children {
		n.owner = nil
		n.children = nil
	}
	p.children = nil
}

func (p *Page) removeChild(c *Node) {
	for i, child := range p.children {
		if child == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func (p *Page) childList() *[]*Node { return &p.children }

// Document is an ordered collection of pages with one current (active)
// page. The current page is a UI affordance: transformations update it so
// a front-end can follow along, but document data does not depend on it.
type Document struct {
	Name string

	pages   []*Page
	current *Page
}

// NewDocument creates an empty document.
func NewDocument(name string) *Document {
	return &Document{Name: name}
}

// Pages returns the document's pages in order. The returned slice is a
// copy.
func (d *Document) Pages() []*Page {
	out := make([]*Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int { return len(d.pages) }

// NewPage creates a page with the given name and appends it at the end of
// the page order.
func (d *Document) NewPage(name string) *Page {
	p := NewPage(name)
	d.pages = append(d.pages, p)
	return p
}

// AppendPage appends an existing page at the end of the page order.
// Appending a page that is already in the document is a no-op.
func (d *Document) AppendPage(p *Page) {
	if p == nil {
		return
	}
	for _, existing := range d.pages {
		if existing == p {
			return
		}
	}
	d.pages = append(d.pages, p)
}

// RemovePage removes the page from the document. If the removed page was
// current, the first remaining page becomes current.
func (d *Document) RemovePage(p *Page) {
	for i, existing := range d.pages {
		if existing == p {
			d.pages = append(d.pages[:i], d.pages[i+1:]...)
			break
		}
	}
	if d.current == p {
		d.current = nil
	}
}

// CurrentPage returns the active page. If none has been set it defaults
// to the first page, or nil for an empty document.
func (d *Document) CurrentPage() *Page {
	if d.current != nil {
		return d.current
	}
	if len(d.pages) > 0 {
		return d.pages[0]
	}
	return nil
}

// SetCurrentPage makes p the active page. Pages not in the document are
// ignored.
func (d *Document) SetCurrentPage(p *Page) {
	for _, existing := range d.pages {
		if existing == p {
			d.current = p
			return
		}
	}
}

// PageNames returns the names of all pages in document order. Names may
// repeat.
func (d *Document) PageNames() []string {
	names := make([]string, len(d.pages))
	for i, p := range d.pages {
		names[i] = p.Name
	}
	return names
}
