package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/internal/query"
	"github.com/hyperjump/wonderland/internal/vectordb"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		// An unreadable body is treated like a missing one.
		s.logger.Debug("read query body failed", zap.Error(err))
		body = nil
	}
	resp, err := s.query.Query(r.Context(), body)
	if err != nil {
		qe := query.AsError(err)
		switch qe.Kind {
		case query.KindBadRequest:
			s.logger.Debug("rejected query", zap.String("reason", qe.Message))
		case query.KindUnavailable:
			s.logger.Warn("query while vector database not loaded")
		default:
			// The service has already logged the failure with the query text.
			s.logger.Debug("query failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(qe))
		}
		s.respondError(w, qe.StatusCode(), qe.Message)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cwd, err := os.Getwd()
	if err != nil {
		s.logger.Warn("getwd failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:           "running",
		VectorDBLoaded:   s.query.Available(),
		CurrentDirectory: cwd,
	})
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status         string          `json:"status"`
	VectorDBLoaded bool            `json:"vector_db_loaded"`
	Path           string          `json:"path,omitempty"`
	Index          *vectordb.Stats `json:"index,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: "running", VectorDBLoaded: s.db != nil}
	if s.db != nil {
		resp.Path = s.db.Dir()
		stats, err := s.db.Stats(r.Context())
		if err != nil {
			s.logger.Error("status: index stats failed", zap.Error(err))
			resp.Error = err.Error()
		} else {
			resp.Index = stats
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
