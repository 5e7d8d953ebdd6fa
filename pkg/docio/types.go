// Package docio provides the canonical serialization format for
// documents.
//
// The format is human-readable JSON (with bson tags for document stores)
// and designed for round-trip fidelity: a document exported and
// re-imported is structurally identical, including metadata slots,
// hidden/locked flags, and the current-page marker.
//
//	{
//	  "name": "Handbook",
//	  "current_page": "p1",
//	  "pages": [
//	    {"id": "p1", "name": "Cover", "children": [
//	      {"id": "n1", "type": "TEXT", "name": "Title"}
//	    ]}
//	  ]
//	}
package docio

import (
	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/errors"
)

// Document is the wire form of a [doc.Document].
type Document struct {
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	CurrentPage string `json:"current_page,omitempty" bson:"current_page,omitempty"` // page ID
	Pages       []Page `json:"pages" bson:"pages"`
}

// Page is the wire form of a [doc.Page].
type Page struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Children []Node `json:"children,omitempty" bson:"children,omitempty"`
}

// Node is the wire form of a [doc.Node]. Geometry and state fields are
// omitted at their zero values.
type Node struct {
	ID       string            `json:"id" bson:"id"`
	Type     string            `json:"type" bson:"type"`
	Name     string            `json:"name,omitempty" bson:"name,omitempty"`
	X        float64           `json:"x,omitempty" bson:"x,omitempty"`
	Y        float64           `json:"y,omitempty" bson:"y,omitempty"`
	Width    float64           `json:"width,omitempty" bson:"width,omitempty"`
	Height   float64           `json:"height,omitempty" bson:"height,omitempty"`
	Hidden   bool              `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Locked   bool              `json:"locked,omitempty" bson:"locked,omitempty"`
	Meta     map[string]string `json:"meta,omitempty" bson:"meta,omitempty"`
	Children []Node            `json:"children,omitempty" bson:"children,omitempty"`
}

// FromDocument converts a document to its wire form.
func FromDocument(d *doc.Document) Document {
	out := Document{Name: d.Name}
	if cur := d.CurrentPage(); cur != nil {
		out.CurrentPage = cur.ID
	}
	pages := d.Pages()
	out.Pages = make([]Page, len(pages))
	for i, p := range pages {
		out.Pages[i] = Page{
			ID:       p.ID,
			Name:     p.Name,
			Children: fromNodes(p.Children()),
		}
	}
	return out
}

func fromNodes(nodes []*doc.Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Node{
			ID:       n.ID,
			Type:     string(n.Type),
			Name:     n.Name,
			X:        n.X,
			Y:        n.Y,
			Width:    n.Width,
			Height:   n.Height,
			Hidden:   n.Hidden,
			Locked:   n.Locked,
			Meta:     copyMeta(n.Meta),
			Children: fromNodes(n.Children()),
		}
	}
	return out
}

// ToDocument converts the wire form back to a live document. Pages and
// nodes without an id get a fresh one, so hand-written files can omit
// ids. Returns an error if a node has an empty type or if the
// current-page marker references an unknown page.
func (w Document) ToDocument() (*doc.Document, error) {
	d := doc.NewDocument(w.Name)
	var current *doc.Page

	for _, wp := range w.Pages {
		p := d.NewPage(wp.Name)
		if wp.ID != "" {
			p.ID = wp.ID
		}
		for _, wn := range wp.Children {
			n, err := wn.toNode()
			if err != nil {
				return nil, err
			}
			if err := p.AppendChild(n); err != nil {
				return nil, err
			}
		}
		if w.CurrentPage != "" && p.ID == w.CurrentPage {
			current = p
		}
	}

	if w.CurrentPage != "" {
		if current == nil {
			return nil, errors.New(errors.ErrCodeInvalidDocument,
				"current_page %q does not match any page", w.CurrentPage)
		}
		d.SetCurrentPage(current)
	}
	return d, nil
}

func (w Node) toNode() (*doc.Node, error) {
	if w.Type == "" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "node %q has no type", w.ID)
	}
	n := doc.NewNode(doc.NodeType(w.Type), w.Name)
	if w.ID != "" {
		n.ID = w.ID
	}
	n.X, n.Y = w.X, w.Y
	n.Width, n.Height = w.Width, w.Height
	n.Hidden, n.Locked = w.Hidden, w.Locked
	for k, v := range w.Meta {
		n.Meta[k] = v
	}
	for _, wc := range w.Children {
		c, err := wc.toNode()
		if err != nil {
			return nil, err
		}
		if err := n.AppendChild(c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func copyMeta(m doc.Metadata) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
