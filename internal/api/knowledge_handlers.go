package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agrichat/internal/ingest"
	"agrichat/internal/store"

	"github.com/go-chi/chi/v5"
)

type knowledgeRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Intent   string `json:"intent"`
	Crop     string `json:"crop"`
	Language string `json:"language"`
	Topic    string `json:"topic"`
}

func (k knowledgeRequest) input() store.KnowledgeInput {
	return store.KnowledgeInput{
		Question: k.Question,
		Answer:   k.Answer,
		Intent:   k.Intent,
		Crop:     k.Crop,
		Language: k.Language,
		Topic:    k.Topic,
	}.Normalized()
}

// readKnowledge decodes and validates a create/update body. It writes the
// 400 response itself and returns ok=false on failure.
func (s *Server) readKnowledge(w http.ResponseWriter, r *http.Request) (store.KnowledgeInput, bool) {
	var req knowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return store.KnowledgeInput{}, false
	}
	req.Question = strings.TrimSpace(req.Question)
	req.Answer = strings.TrimSpace(req.Answer)

	if err := s.validator.Validate(req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return store.KnowledgeInput{}, false
	}
	return req.input(), true
}

func knowledgeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Invalid knowledge id")
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusNotFound, codeNotFound, "Knowledge entry not found")
}

// handleListKnowledge lists entries newest first, optionally filtered by ?q=
func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Knowledge.ListKnowledge(r.Context(), r.URL.Query().Get("q"), store.MaxKnowledgeList)
	if err != nil {
		s.internalError(w, r, "list knowledge failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := knowledgeID(w, r)
	if !ok {
		return
	}

	entry, err := s.Knowledge.GetKnowledge(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w)
		return
	}
	if err != nil {
		s.internalError(w, r, "get knowledge failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readKnowledge(w, r)
	if !ok {
		return
	}

	id, err := s.Knowledge.CreateKnowledge(r.Context(), in)
	if err != nil {
		s.internalError(w, r, "create knowledge failed", err)
		return
	}

	s.Logger.WithContext("id", id).Info("knowledge entry created")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"id":      id,
		"message": "Knowledge entry created",
	})
}

// handleUpdateKnowledge replaces an entry. An unknown id is reported before
// body validation.
func (s *Server) handleUpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := knowledgeID(w, r)
	if !ok {
		return
	}

	if _, err := s.Knowledge.GetKnowledge(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		notFound(w)
		return
	} else if err != nil {
		s.internalError(w, r, "update knowledge failed", err)
		return
	}

	in, ok := s.readKnowledge(w, r)
	if !ok {
		return
	}

	err := s.Knowledge.UpdateKnowledge(r.Context(), id, in)
	if errors.Is(err, store.ErrNotFound) {
		// deleted concurrently
		notFound(w)
		return
	}
	if err != nil {
		s.internalError(w, r, "update knowledge failed", err)
		return
	}

	s.Logger.WithContext("id", id).Info("knowledge entry updated")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"id":      id,
		"message": "Knowledge entry updated",
	})
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := knowledgeID(w, r)
	if !ok {
		return
	}

	err := s.Knowledge.DeleteKnowledge(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w)
		return
	}
	if err != nil {
		s.internalError(w, r, "delete knowledge failed", err)
		return
	}

	s.Logger.WithContext("id", id).Info("knowledge entry deleted")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"id":      id,
		"message": "Knowledge entry deleted",
	})
}

// handleImportCSV imports an uploaded CSV file from the "file" form field
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ingest.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(ingest.MaxFileSize); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	if !ingest.IsImportable(header.Filename) {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Only .csv files can be imported")
		return
	}

	res, err := s.Importer.ImportCSV(r.Context(), file, header.Filename)
	if errors.Is(err, ingest.ErrMissingColumns) {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "CSV must have Question and Answer columns")
		return
	}
	if err != nil {
		s.internalError(w, r, "CSV import failed", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"added":      res.Added,
		"duplicates": res.Duplicates,
		"skipped":    res.Skipped,
	})
}

type importURLRequest struct {
	Question string `json:"question" validate:"required"`
	URL      string `json:"url" validate:"required,http_url"`
	Intent   string `json:"intent"`
	Crop     string `json:"crop"`
}

// handleImportURL stores the readable text of a web page as an answer
func (s *Server) handleImportURL(w http.ResponseWriter, r *http.Request) {
	var req importURLRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	req.URL = strings.TrimSpace(req.URL)

	if err := s.validator.Validate(req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	id, err := s.Importer.ImportURL(r.Context(), s.Fetcher, req.Question, req.URL, req.Intent, req.Crop)
	if err != nil {
		s.Logger.WithFields(map[string]interface{}{
			"url":   req.URL,
			"error": err.Error(),
		}).Warn("URL import failed")
		ErrorResponse(w, http.StatusBadGateway, "fetch_failed", "Failed to import URL")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"id":      id,
		"message": "Knowledge entry created",
	})
}
