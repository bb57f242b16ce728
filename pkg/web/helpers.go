package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ParseID extracts and validates the ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	pathValueID := r.PathValue("id")
	id, err := uuid.Parse(pathValueID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return uuid.UUID{}, false
	}
	return id, true
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ParsePage reads the optional limit/offset query parameters. Missing values
// fall back to defaults; malformed or out-of-range values produce a 400 response.
func ParsePage(r *http.Request, w http.ResponseWriter, logger *slog.Logger) (limit, offset int32, ok bool) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed <= 0 || parsed > maxPageLimit {
			RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid limit: %s", v))
			return 0, 0, false
		}
		limit = int32(parsed)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed < 0 {
			RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid offset: %s", v))
			return 0, 0, false
		}
		offset = int32(parsed)
	}
	return limit, offset, true
}
