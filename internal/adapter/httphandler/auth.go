package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	auth     AuthService
	validate *validator.Validate
}

func RegisterAuth(mux *http.ServeMux, auth AuthService) {
	h := AuthHandler{auth: auth, validate: newValidator()}
	mux.HandleFunc("POST /v1/auth/register", h.PostRegister)
	mux.HandleFunc("POST /v1/auth/login", h.PostLogin)
}

func (h AuthHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.PostRegister"
	log := slog.With("op", op)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidInput("invalid JSON data"))
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "user registered", toUserView(user))
	log.Info("user registered", "userID", user.ID)
}

func (h AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.PostLogin"
	log := slog.With("op", op)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidInput("invalid JSON data"))
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "login successful", map[string]string{
		"token": token,
	})
}
