package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/service"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, claims, err := auth.Issue(h.tokens, user.ID, user.Username, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, TokenResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if h.revocations != nil && claims.TokenID != "" {
		if err := h.revocations.Revoke(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
			h.fail(w, r, err)
			return
		}
	} else {
		h.logger.Debug("logout without revocation list", zap.Int64("user_id", claims.UserID))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.reader(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), actorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.writer(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), actorID, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
