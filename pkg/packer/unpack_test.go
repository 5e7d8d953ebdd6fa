package packer

import (
	"context"
	"testing"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/errors"
)

// container builds a staged container frame with the given recorded
// original name and content nodes.
func container(originalName string, nodes ...*doc.Node) *doc.Node {
	c := doc.NewNode(doc.NodeTypeFrame, originalName)
	if originalName != "" {
		c.Meta[OriginalNameKey] = originalName
	}
	for _, n := range nodes {
		if err := c.AppendChild(n); err != nil {
			panic(err)
		}
	}
	return c
}

// stagedDocument builds a document holding only a staging page with the
// given top-level nodes.
func stagedDocument(t *testing.T, nodes ...*doc.Node) *doc.Document {
	t.Helper()
	d := doc.NewDocument("test")
	staging := d.NewPage(StagingPageName)
	for _, n := range nodes {
		if err := staging.AppendChild(n); err != nil {
			t.Fatalf("AppendChild: %v", err)
		}
	}
	return d
}

func TestUnpack(t *testing.T) {
	ctx := context.Background()

	t.Run("restores one page per container", func(t *testing.T) {
		a := shape("a", 0, 0, 10, 10)
		b := shape("b", 5, 5, 10, 10)
		d := stagedDocument(t,
			container("Cover", a),
			container("Detail", b),
		)

		res, err := testEngine().Unpack(ctx, d)
		if err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if res.Pages != 2 {
			t.Fatalf("Pages = %d, want 2", res.Pages)
		}

		pages := d.Pages()
		if len(pages) != 3 {
			t.Fatalf("%d pages, want 3 (staging + 2 restored)", len(pages))
		}
		cover, detail := pages[1], pages[2]
		if cover.Name != "Cover" || detail.Name != "Detail" {
			t.Errorf("restored names = %q, %q", cover.Name, detail.Name)
		}

		// Content moves, not copies: the exact node objects reparent.
		if cover.Children()[0] != a {
			t.Error("Cover does not hold the original staged node")
		}
		if detail.Children()[0] != b {
			t.Error("Detail does not hold the original staged node")
		}

		if got := findStagingPage(d).NumChildren(); got != 0 {
			t.Errorf("staging holds %d nodes after unpack, want 0", got)
		}
		if d.CurrentPage() != detail {
			t.Error("current page is not the last restored page")
		}
	})

	t.Run("falls back to container name without metadata", func(t *testing.T) {
		c := doc.NewNode(doc.NodeTypeFrame, "Handmade")
		d := stagedDocument(t, c)

		if _, err := testEngine().Unpack(ctx, d); err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if got := d.Pages()[1].Name; got != "Handmade" {
			t.Errorf("restored name = %q, want Handmade", got)
		}
	})

	t.Run("resolves name collisions against live page set", func(t *testing.T) {
		d := stagedDocument(t,
			container("A"),
			container("A"),
		)
		d.NewPage("A")

		if _, err := testEngine().Unpack(ctx, d); err != nil {
			t.Fatalf("Unpack: %v", err)
		}

		names := d.PageNames()
		want := []string{StagingPageName, "A", "A (Imported 2)", "A (Imported 3)"}
		if len(names) != len(want) {
			t.Fatalf("page names = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("page %d = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("blank name becomes Untitled", func(t *testing.T) {
		c := doc.NewNode(doc.NodeTypeFrame, "   ")
		d := stagedDocument(t, c)

		if _, err := testEngine().Unpack(ctx, d); err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if got := d.Pages()[1].Name; got != "Untitled" {
			t.Errorf("restored name = %q, want Untitled", got)
		}
	})

	t.Run("ignores non-frame nodes on staging", func(t *testing.T) {
		stray := shape("stray", 0, 0, 10, 10)
		d := stagedDocument(t,
			stray,
			container("Real"),
		)

		res, err := testEngine().Unpack(ctx, d)
		if err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if res.Pages != 1 {
			t.Fatalf("Pages = %d, want 1", res.Pages)
		}

		staging := findStagingPage(d)
		if staging.NumChildren() != 1 || staging.Children()[0] != stray {
			t.Error("non-frame node did not stay on the staging page")
		}
	})

	t.Run("missing staging page", func(t *testing.T) {
		d := doc.NewDocument("test")
		d.NewPage("Page 1")

		res, err := testEngine().Unpack(ctx, d)
		if res != nil {
			t.Errorf("result = %+v, want nil", res)
		}
		if got := errors.GetCode(err); got != errors.ErrCodeStagingMissing {
			t.Fatalf("code = %v, want %v", got, errors.ErrCodeStagingMissing)
		}
		if !errors.IsRecovered(err) {
			t.Error("missing staging should be a recovered outcome")
		}
		if d.NumPages() != 1 {
			t.Error("document mutated on recovered outcome")
		}
	})

	t.Run("nothing to unpack", func(t *testing.T) {
		d := stagedDocument(t, shape("not a container", 0, 0, 1, 1))

		_, err := testEngine().Unpack(ctx, d)
		if got := errors.GetCode(err); got != errors.ErrCodeNothingToUnpack {
			t.Fatalf("code = %v, want %v", got, errors.ErrCodeNothingToUnpack)
		}
		if !errors.IsRecovered(err) {
			t.Error("nothing-to-unpack should be a recovered outcome")
		}
		if d.NumPages() != 1 {
			t.Error("document mutated on recovered outcome")
		}
	})

	t.Run("resumes after a partial run", func(t *testing.T) {
		d := stagedDocument(t,
			container("One"),
			container("Two"),
			container("Three"),
		)

		// Process only the first container, as an aborted run would.
		staging := findStagingPage(d)
		if _, err := unpackContainer(d, staging.Children()[0]); err != nil {
			t.Fatalf("unpackContainer: %v", err)
		}

		res, err := testEngine().Unpack(context.Background(), d)
		if err != nil {
			t.Fatalf("Unpack after partial run: %v", err)
		}
		if res.Pages != 2 {
			t.Fatalf("Pages = %d, want 2 (remaining containers)", res.Pages)
		}

		names := d.PageNames()
		want := []string{StagingPageName, "One", "Two", "Three"}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("page %d = %q, want %q", i, names[i], want[i])
			}
		}
	})
}
