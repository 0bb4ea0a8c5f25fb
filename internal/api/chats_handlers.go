package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"agrichat/internal/chatlog"
)

const (
	defaultChatLimit = 100
	maxChatLimit     = 1000
)

// handleListChats returns the most recent chat records
func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	limit := defaultChatLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	limit = max(1, min(limit, maxChatLimit))

	records, err := s.ChatLog.Tail(limit)
	if err != nil {
		s.internalError(w, r, "failed to retrieve chats", err)
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

// handleExportChats downloads the whole chat log as CSV
func (s *Server) handleExportChats(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := s.ChatLog.Export(&buf)
	switch {
	case errors.Is(err, chatlog.ErrNoLog):
		ErrorResponse(w, http.StatusNotFound, codeNotFound, "No chat logs found")
		return
	case errors.Is(err, chatlog.ErrNoData):
		ErrorResponse(w, http.StatusNotFound, codeNotFound, "No chat data to export")
		return
	case err != nil:
		s.internalError(w, r, "failed to export chats", err)
		return
	}

	s.Logger.WithContext("records", n).Info("exported chat log")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="chat_export.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
