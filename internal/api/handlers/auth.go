package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.SugaredLogger
}

func NewAuthHandler(authService *service.AuthService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type LoginRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Incorrect password")
			return
		}
		h.log.Errorw("ERROR [auth.Login]", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}
