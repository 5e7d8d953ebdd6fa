package docio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pagepack/pagepack/pkg/doc"
)

// Read decodes a JSON document from r. The returned document is
// independent of r and can be modified safely. Read does not close r.
func Read(r io.Reader) (*doc.Document, error) {
	var w Document
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return w.ToDocument()
}

// Write encodes the document to w as indented JSON.
func Write(w io.Writer, d *doc.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDocument(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Import reads the JSON file at path and returns the decoded document.
// Errors wrap the underlying cause with the file path for context.
func Import(path string) (*doc.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return d, nil
}

// Export writes the document as JSON to the file at path, replacing any
// existing content.
func Export(path string, d *doc.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Marshal returns the document's wire form as JSON bytes. Used by stores
// that persist documents as opaque blobs.
func Marshal(d *doc.Document) ([]byte, error) {
	return json.Marshal(FromDocument(d))
}

// Unmarshal decodes JSON bytes produced by [Marshal].
func Unmarshal(data []byte) (*doc.Document, error) {
	var w Document
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return w.ToDocument()
}
