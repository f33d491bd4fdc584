// Package server is a small reference implementation of the todo REST API.
// It backs `todo serve` and the client tests; production deployments talk
// to their own server.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada/internal/model"
)

type server struct {
	store *Store
	log   *slog.Logger
}

// NewRouter mounts the collection under /api/todos.
func NewRouter(store *Store, log *slog.Logger) *mux.Router {
	if log == nil {
		log = slog.Default()
	}
	s := &server{store: store, log: log}

	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, w, req)
			log.Info("handled", "method", req.Method, "url", req.URL, "duration", m.Duration, "status", m.Code,
				"request_id", req.Header.Get("X-Request-ID"))
		})
	})
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/todos").Subrouter()
	api.HandleFunc("", s.list).Methods(http.MethodGet)
	api.HandleFunc("", s.create).Methods(http.MethodPost)
	api.HandleFunc("/{id}", s.replace).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.delete).Methods(http.MethodDelete)
	return r
}

func (s *server) list(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.List())
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	var in model.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	t, err := s.store.Create(in)
	if err != nil {
		s.internal(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *server) replace(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	var in model.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	t, err := s.store.Replace(id, in)
	if errors.Is(err, ErrNoSuchTodo) {
		http.Error(w, "todo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internal(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	err := s.store.Delete(id)
	if errors.Is(err, ErrNoSuchTodo) {
		http.Error(w, "todo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) internal(w http.ResponseWriter, err error) {
	s.log.Error("store write failed", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "err", err)
	}
}
