package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pkozlov/bucketeer/internal/analytics"
	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/importer"
	"github.com/pkozlov/bucketeer/internal/model"
	"github.com/pkozlov/bucketeer/internal/prompt"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	set, err := s.store.CategorySet(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": set})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	cat, err := s.store.CreateCategory(r.Context(), strings.TrimSpace(req.Name))
	if errors.Is(err, common.ErrDuplicateEntry) {
		s.writeError(w, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := s.store.RemoveCategory(r.Context(), name)
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": name})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, _ *http.Request) {
	f, err := s.progress.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	f, err := s.progress.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.Compute(f))
}

func (s *Server) handleGetSpending(w http.ResponseWriter, _ *http.Request) {
	f, err := s.progress.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"monthly": analytics.MonthlySpending(f)})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "no file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, "no file selected")
		return
	}

	format, err := importer.DetectFormat(header.Filename)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unsupported file format, use CSV, JSON, or OFX")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows, err := importer.Parse(format, bytes.NewReader(content))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := s.progress.Init(header.Filename, model.ContentHash(content), rows)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("file uploaded", "file", header.Filename, "rows", len(rows))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"file_name":  header.Filename,
		"total_rows": len(rows),
		"progress":   f,
	})
}

func (s *Server) handleMapRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RowIndex *int   `json:"row_index"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RowIndex == nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set, err := s.store.CategorySet(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !set.Contains(req.Category) {
		s.writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	f, err := s.progress.Confirm(*req.RowIndex, req.Category)
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "row not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if row, ok := f.Row(*req.RowIndex); ok {
		if err := s.store.RecordMapping(r.Context(), row, req.Category); err != nil {
			s.logger.Warn("failed to record mapping history", "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"row_index": *req.RowIndex,
		"category":  req.Category,
		"progress":  f,
	})
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	f, err := s.progress.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pending := f.Unmapped()
	if len(pending) == 0 {
		s.writeJSON(w, http.StatusOK, map[string]any{"results": map[int]model.Assignment{}})
		return
	}

	set, err := s.store.CategorySet(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	examples, err := s.store.RecentExamples(r.Context(), prompt.DefaultMaxExamples)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results, err := s.engine.Categorize(r.Context(), pending, set, examples)
	if err != nil && len(results) == 0 {
		if errors.Is(err, common.ErrInvalidConfig) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	for _, a := range results {
		s.metrics.RowOutcomes.WithLabelValues(string(a.Status)).Inc()
	}

	resp := map[string]any{"results": results}
	if err != nil {
		resp["partial"] = true
		resp["error"] = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RowIndex *int `json:"row_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RowIndex == nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := s.progress.Load()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	row, ok := f.Row(*req.RowIndex)
	if !ok {
		s.writeError(w, http.StatusNotFound, "row not found")
		return
	}

	set, err := s.store.CategorySet(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	examples, err := s.store.RecentExamples(r.Context(), prompt.DefaultMaxExamples)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	assignment, err := s.engine.SuggestOne(r.Context(), row, set, examples)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.metrics.RowOutcomes.WithLabelValues(string(assignment.Status)).Inc()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"row_index":  *req.RowIndex,
		"assignment": assignment,
	})
}
