package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/packer"
)

func testCLI() *CLI {
	return &CLI{Logger: log.New(io.Discard)}
}

func writeDocument(t *testing.T, d *doc.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := docio.Export(path, d); err != nil {
		t.Fatalf("Export: %v", err)
	}
	return path
}

func packOp(c *CLI) func(context.Context, *doc.Document) (int, error) {
	return func(ctx context.Context, d *doc.Document) (int, error) {
		res, err := packer.New(c.Logger, packer.NoopNotifier{}).Pack(ctx, d)
		if res != nil {
			return res.Containers, err
		}
		return 0, err
	}
}

func TestTransformFile(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites the input in place", func(t *testing.T) {
		d := doc.NewDocument("test")
		d.NewPage("Cover")
		path := writeDocument(t, d)

		c := testCLI()
		if err := c.transformFile(ctx, path, "", "Packing pages", packOp(c)); err != nil {
			t.Fatalf("transformFile: %v", err)
		}

		got, err := docio.Import(path)
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if got.NumPages() != 2 {
			t.Fatalf("output has %d pages, want 2", got.NumPages())
		}
		if !packer.IsStagingPage(got.Pages()[1]) {
			t.Error("output has no staging page")
		}
	})

	t.Run("writes to a separate output file", func(t *testing.T) {
		d := doc.NewDocument("test")
		d.NewPage("Cover")
		input := writeDocument(t, d)
		output := filepath.Join(t.TempDir(), "packed.json")

		c := testCLI()
		if err := c.transformFile(ctx, input, output, "Packing pages", packOp(c)); err != nil {
			t.Fatalf("transformFile: %v", err)
		}

		// Input stays as it was; output holds the transformed document.
		before, err := docio.Import(input)
		if err != nil {
			t.Fatal(err)
		}
		if before.NumPages() != 1 {
			t.Errorf("input mutated: %d pages", before.NumPages())
		}
		after, err := docio.Import(output)
		if err != nil {
			t.Fatalf("Import output: %v", err)
		}
		if after.NumPages() != 2 {
			t.Errorf("output has %d pages, want 2", after.NumPages())
		}
	})

	t.Run("recovered outcome leaves the file untouched", func(t *testing.T) {
		d := doc.NewDocument("test")
		d.NewPage(packer.StagingPageName) // nothing to pack
		path := writeDocument(t, d)

		original, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		c := testCLI()
		if err := c.transformFile(ctx, path, "", "Packing pages", packOp(c)); err != nil {
			t.Fatalf("transformFile returned %v for a recovered outcome", err)
		}

		after, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(after) != string(original) {
			t.Error("file changed on a recovered outcome")
		}
	})

	t.Run("missing input is an error", func(t *testing.T) {
		c := testCLI()
		err := c.transformFile(ctx, filepath.Join(t.TempDir(), "absent.json"), "", "Packing pages", packOp(c))
		if err == nil {
			t.Fatal("transformFile accepted a missing input file")
		}
	})
}
