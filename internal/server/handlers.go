package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/roach88/nlsql/internal/engine"
	"github.com/roach88/nlsql/internal/store"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	Dataset  string `json:"dataset"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}
	if req.Dataset == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dataset is required"})
		return
	}

	out, err := s.eng.Ask(r.Context(), req.Question, req.Dataset)
	switch {
	case engine.IsConfigurationError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil && out != nil:
		writeJSON(w, http.StatusInternalServerError, out)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	dataset := r.URL.Query().Get("dataset")
	if dataset == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dataset is required"})
		return
	}

	schema, err := s.eng.Schema(r.Context(), dataset)
	switch {
	case engine.IsConfigurationError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, schema)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []store.Entry{})
		return
	}

	var (
		entries []store.Entry
		err     error
	)
	if dataset := r.URL.Query().Get("dataset"); dataset != "" {
		entries, err = s.history.RecentForDataset(r.Context(), dataset, s.historySize)
	} else {
		entries, err = s.history.Recent(r.Context(), s.historySize)
	}
	if err != nil {
		s.log.Error("server: read history", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to read history"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Metrics().Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
