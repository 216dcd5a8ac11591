// Package server is the thin REST façade over the dataset and query core.
//
// Transport mechanics only: decode requests, call the service, map errors
// to status codes. Request errors map to 400, a remove of an absent
// dataset to 404.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"campusql/internal/dataset"
	"campusql/internal/engine"
	"campusql/internal/service"
)

// maxArchiveBytes bounds PUT bodies; archives are tens of megabytes at
// most.
const maxArchiveBytes = 64 << 20

// Server serves the REST routes.
type Server struct {
	svc  *service.Service
	http *http.Server
}

// New builds a server bound to addr.
func New(addr string, svc *service.Service) *Server {
	s := &Server{svc: svc}

	r := mux.NewRouter()
	r.HandleFunc("/echo/{msg}", s.echo).Methods(http.MethodGet)
	r.HandleFunc("/dataset/{id}/{kind}", s.addDataset).Methods(http.MethodPut)
	r.HandleFunc("/dataset/{id}", s.removeDataset).Methods(http.MethodDelete)
	r.HandleFunc("/query", s.performQuery).Methods(http.MethodPost)
	r.HandleFunc("/datasets", s.listDatasets).Methods(http.MethodGet)

	// Middleware wraps the router rather than using r.Use so that CORS
	// preflights, which match no route's method list, are still answered.
	s.http = &http.Server{Addr: addr, Handler: requestLog(cors(r))}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	msg := mux.Vars(r)["msg"]
	writeResult(w, http.StatusOK, fmt.Sprintf("%s...%s", msg, msg))
}

func (s *Server) addDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxArchiveBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
		return
	}
	content := base64.StdEncoding.EncodeToString(body)
	ids, err := s.svc.AddDataset(r.Context(), vars["id"], vars["kind"], content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeResult(w, http.StatusOK, ids)
}

func (s *Server) removeDataset(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.RemoveDataset(mux.Vars(r)["id"])
	if err != nil {
		if dataset.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeResult(w, http.StatusOK, id)
}

func (s *Server) performQuery(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode query document: %w", err))
		return
	}
	rows, err := s.svc.PerformQuery(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if rows == nil {
		rows = []engine.Row{}
	}
	writeResult(w, http.StatusOK, rows)
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.svc.ListDatasets()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeResult(w, http.StatusOK, infos)
}

func writeResult(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}

// requestLog logs one line per request with a correlation id.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"took", time.Since(start),
		)
	})
}

// cors permits cross-origin requests from the visualization frontend.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
