package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type tokenRequest struct {
	APIKey string `json:"apiKey"`
}

// Token handles POST /auth/token, exchanging the API key for a JWT.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "auth is not enabled"})
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "apiKey is required"})
		return
	}

	result, err := h.service.Exchange(req.APIKey)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			return
		}
		slog.Error("token exchange failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
