package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// LoginHandler exchanges a staff PIN for an access token.
type LoginHandler struct {
	users  Users
	tokens *TokenManager
	logger *logrus.Logger
}

func NewLoginHandler(users Users, tokens *TokenManager, logger *logrus.Logger) *LoginHandler {
	return &LoginHandler{users: users, tokens: tokens, logger: logger}
}

type loginRequest struct {
	PIN string `json:"pin"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PIN == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "pin is required",
		})
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.PIN)
	if errors.Is(err, ErrInvalidPIN) {
		respondUnauthorized(w, "invalid pin")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Login lookup failed")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "login unavailable",
		})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "login unavailable",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("Staff login")
	respondJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
