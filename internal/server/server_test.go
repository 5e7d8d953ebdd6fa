package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pagepack/pagepack/pkg/docio"
	pkgerrors "github.com/pagepack/pagepack/pkg/errors"
	"github.com/pagepack/pagepack/pkg/packer"
	"github.com/pagepack/pagepack/pkg/store"
)

func newTestServer(t *testing.T, shutdown func()) (*httptest.Server, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	srv := New(st, log.New(io.Discard), shutdown)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// sampleWireDocument is a two-page document in wire form.
func sampleWireDocument() docio.Document {
	return docio.Document{
		Name: "Handbook",
		Pages: []docio.Page{
			{Name: "Cover", Children: []docio.Node{
				{Type: "TEXT", Name: "Title", Width: 100, Height: 20},
			}},
			{Name: "Detail"},
		},
	}
}

func createDocument(t *testing.T, baseURL string) string {
	t.Helper()
	resp := postJSON(t, baseURL+"/v1/documents", sampleWireDocument())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[map[string]string](t, resp)
	if created["id"] == "" {
		t.Fatal("create returned no id")
	}
	return created["id"]
}

func TestDocumentLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	id := createDocument(t, ts.URL)

	t.Run("list includes the document", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/documents")
		if err != nil {
			t.Fatal(err)
		}
		listed := decode[map[string][]string](t, resp)
		if len(listed["documents"]) != 1 || listed["documents"][0] != id {
			t.Errorf("documents = %v, want [%s]", listed["documents"], id)
		}
	})

	t.Run("get returns the wire document", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/documents/" + id)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get status = %d", resp.StatusCode)
		}
		got := decode[docio.Document](t, resp)
		if got.Name != "Handbook" || len(got.Pages) != 2 {
			t.Errorf("document = %q with %d pages", got.Name, len(got.Pages))
		}
	})

	t.Run("get unknown id is 404", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/documents/absent")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
		body := decode[map[string]string](t, resp)
		if body["code"] != string(pkgerrors.ErrCodeNotFound) {
			t.Errorf("code = %q", body["code"])
		}
	})

	t.Run("delete removes the document", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/documents/"+id, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("delete status = %d, want 204", resp.StatusCode)
		}

		getResp, err := http.Get(ts.URL + "/v1/documents/" + id)
		if err != nil {
			t.Fatal(err)
		}
		getResp.Body.Close()
		if getResp.StatusCode != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", getResp.StatusCode)
		}
	})
}

func TestCreateInvalidDocument(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	t.Run("malformed json", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/v1/documents", "application/json", strings.NewReader("{not json"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("node without type", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/documents", docio.Document{
			Pages: []docio.Page{{Name: "P", Children: []docio.Node{{Name: "typeless"}}}},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		body := decode[map[string]string](t, resp)
		if body["code"] != string(pkgerrors.ErrCodeInvalidDocument) {
			t.Errorf("code = %q", body["code"])
		}
	})
}

func TestPackMessage(t *testing.T) {
	ts, st := newTestServer(t, nil)
	id := createDocument(t, ts.URL)

	resp := postJSON(t, ts.URL+"/v1/documents/"+id+"/messages", Message{Type: MessagePackPages})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	completion := decode[Completion](t, resp)
	if !completion.Done || completion.Count != 2 || completion.Code != "" {
		t.Errorf("completion = %+v, want done with 2 containers", completion)
	}
	if completion.Notice == "" {
		t.Error("completion carries no notice")
	}

	// The transformed document was persisted.
	d, err := st.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.NumPages() != 3 {
		t.Fatalf("stored document has %d pages, want 3", d.NumPages())
	}
	staging := d.Pages()[2]
	if !packer.IsStagingPage(staging) {
		t.Fatalf("last page is %q, not the staging page", staging.Name)
	}
	if staging.NumChildren() != 2 {
		t.Errorf("staging holds %d containers, want 2", staging.NumChildren())
	}
}

func TestUnpackMessage(t *testing.T) {
	ts, st := newTestServer(t, nil)
	id := createDocument(t, ts.URL)

	pack := postJSON(t, ts.URL+"/v1/documents/"+id+"/messages", Message{Type: MessagePackPages})
	pack.Body.Close()

	resp := postJSON(t, ts.URL+"/v1/documents/"+id+"/messages", Message{Type: MessageUnpackPages})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	completion := decode[Completion](t, resp)
	if !completion.Done || completion.Count != 2 || completion.Code != "" {
		t.Errorf("completion = %+v, want done with 2 pages", completion)
	}

	d, err := st.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Source pages survive the pack, so restored pages get suffixed names.
	names := d.PageNames()
	if len(names) != 5 {
		t.Fatalf("page names = %v, want 5 entries", names)
	}
}

func TestRecoveredOutcomeCompletion(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	id := createDocument(t, ts.URL)

	// Unpacking before any pack: no staging page exists. This is a
	// recovered outcome, reported in the completion payload with HTTP 200.
	resp := postJSON(t, ts.URL+"/v1/documents/"+id+"/messages", Message{Type: MessageUnpackPages})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	completion := decode[Completion](t, resp)
	if completion.Code != string(pkgerrors.ErrCodeStagingMissing) {
		t.Errorf("code = %q, want %s", completion.Code, pkgerrors.ErrCodeStagingMissing)
	}
	if completion.Count != 0 {
		t.Errorf("count = %d, want 0", completion.Count)
	}
	if completion.Notice == "" {
		t.Error("recovered outcome carries no notice")
	}
}

func TestDocumentMessageValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	id := createDocument(t, ts.URL)

	t.Run("unknown type", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/documents/"+id+"/messages", Message{Type: "REFORMAT"})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/documents/absent/messages", Message{Type: MessagePackPages})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestCloseMessage(t *testing.T) {
	closed := make(chan struct{})
	ts, _ := newTestServer(t, func() { close(closed) })

	resp := postJSON(t, ts.URL+"/v1/messages", Message{Type: MessageClose})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	completion := decode[Completion](t, resp)
	if !completion.Done {
		t.Error("close completion not done")
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("shutdown was not invoked")
	}
}

func TestCloseRejectedWithoutShutdown(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/messages", Message{Type: MessageClose})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
