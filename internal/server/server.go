// Package server exposes the pack/unpack engine over HTTP.
//
// The boundary mirrors the trigger protocol of the interactive front-end:
// documents are uploaded once and then addressed by ID, and operations
// are driven by typed messages (PACK_PAGES, UNPACK_PAGES, CLOSE). The
// HTTP response to a message is its completion signal; recovered engine
// outcomes (nothing to pack, staging page missing) are reported in the
// completion payload, not as HTTP errors, because they are user-facing
// notices rather than failures.
//
// At most one operation runs at a time, matching the single-actor
// concurrency model of the engine's host environment.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	pkgerrors "github.com/pagepack/pagepack/pkg/errors"
	"github.com/pagepack/pagepack/pkg/packer"
	"github.com/pagepack/pagepack/pkg/store"
)

// Message types accepted on the messages endpoints.
const (
	MessagePackPages   = "PACK_PAGES"
	MessageUnpackPages = "UNPACK_PAGES"
	MessageClose       = "CLOSE"
)

// Message is an inbound trigger.
type Message struct {
	Type string `json:"type"`
}

// Completion is the response to a processed message. Code is empty on
// success and carries the recovered outcome's error code otherwise;
// Notice is the user-visible notification text either way.
type Completion struct {
	Done   bool   `json:"done"`
	Count  int    `json:"count"`
	Code   string `json:"code,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// errorResponse is the body of non-2xx responses.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server handles document CRUD and trigger messages.
type Server struct {
	store    store.Store
	logger   *log.Logger
	shutdown func()

	mu sync.Mutex // serializes engine operations
}

// New creates a server. shutdown is invoked when a CLOSE message arrives;
// nil means CLOSE is rejected.
func New(st store.Store, logger *log.Logger, shutdown func()) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, logger: logger, shutdown: shutdown}
}

// Router returns the HTTP handler for the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.handleControlMessage)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Post("/messages", s.handleDocumentMessage)
			})
		})
	})
	return r
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var wire docio.Document
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		s.writeError(w, http.StatusBadRequest, pkgerrors.New(pkgerrors.ErrCodeInvalidDocument, "decode document: %v", err))
		return
	}
	d, err := wire.ToDocument()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	id := uuid.NewString()
	if err := s.store.Put(r.Context(), id, d); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("document created", "id", id, "pages", d.NumPages())
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == store.ErrNotFound {
		s.writeError(w, http.StatusNotFound, pkgerrors.New(pkgerrors.ErrCodeNotFound, "document not found"))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docio.FromDocument(d))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDocumentMessage runs a pack or unpack over a stored document and
// answers with the completion payload.
func (s *Server) handleDocumentMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, http.StatusBadRequest, pkgerrors.New(pkgerrors.ErrCodeInvalidMessage, "decode message: %v", err))
		return
	}
	if msg.Type != MessagePackPages && msg.Type != MessageUnpackPages {
		s.writeError(w, http.StatusBadRequest, pkgerrors.New(pkgerrors.ErrCodeInvalidMessage, "unknown message type %q", msg.Type))
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.Get(r.Context(), id)
	if err == store.ErrNotFound {
		s.writeError(w, http.StatusNotFound, pkgerrors.New(pkgerrors.ErrCodeNotFound, "document not found"))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	// A per-request notifier captures the user-visible notice so it can
	// ride along in the completion payload.
	notices := &captureNotifier{}
	engine := packer.New(s.logger, notices)

	var count int
	var opErr error
	switch msg.Type {
	case MessagePackPages:
		var res *packer.PackResult
		res, opErr = engine.Pack(r.Context(), d)
		if res != nil {
			count = res.Containers
		}
	case MessageUnpackPages:
		var res *packer.UnpackResult
		res, opErr = engine.Unpack(r.Context(), d)
		if res != nil {
			count = res.Pages
		}
	}

	if opErr != nil && !pkgerrors.IsRecovered(opErr) {
		// A partial state may have been reached; persist it so a retry
		// can make forward progress.
		if putErr := s.store.Put(r.Context(), id, d); putErr != nil {
			s.logger.Error("persist partial state", "id", id, "err", putErr)
		}
		s.writeError(w, http.StatusInternalServerError, opErr)
		return
	}

	if err := s.store.Put(r.Context(), id, d); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, Completion{
		Done:   true,
		Count:  count,
		Code:   string(pkgerrors.GetCode(opErr)),
		Notice: notices.last,
	})
}

// handleControlMessage serves server-level messages; the only one is
// CLOSE, which shuts the process down gracefully.
func (s *Server) handleControlMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, http.StatusBadRequest, pkgerrors.New(pkgerrors.ErrCodeInvalidMessage, "decode message: %v", err))
		return
	}
	if msg.Type != MessageClose || s.shutdown == nil {
		s.writeError(w, http.StatusBadRequest, pkgerrors.New(pkgerrors.ErrCodeInvalidMessage, "unknown message type %q", msg.Type))
		return
	}

	s.logger.Info("close requested")
	s.writeJSON(w, http.StatusOK, Completion{Done: true})
	go s.shutdown()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	code := pkgerrors.GetCode(err)
	if code == "" {
		code = pkgerrors.ErrCodeInternal
	}
	s.writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: pkgerrors.UserMessage(err),
	})
}

// captureNotifier records the most recent notification text.
type captureNotifier struct {
	last string
}

func (c *captureNotifier) Notify(message string) { c.last = message }

func (c *captureNotifier) SelectAndFrame(*doc.Page, []*doc.Node) {}
