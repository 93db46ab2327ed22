package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	minPasswordLen = 8
	maxBodySize    = 1 << 16
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// credentials is the body of both register and login. DisplayName is only
// read on register.
type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

var errBadRequest = errors.New("bad request")

func decodeCredentials(w http.ResponseWriter, r *http.Request, register bool) (credentials, error) {
	var c credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&c); err != nil {
		return c, fmt.Errorf("%w: invalid request body", errBadRequest)
	}

	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.DisplayName = strings.TrimSpace(c.DisplayName)

	switch {
	case c.Email == "" || c.Password == "":
		return c, fmt.Errorf("%w: email and password are required", errBadRequest)
	case !register:
		return c, nil
	case c.DisplayName == "":
		return c, fmt.Errorf("%w: displayName is required", errBadRequest)
	case !strings.Contains(c.Email, "@"):
		return c, fmt.Errorf("%w: email is invalid", errBadRequest)
	case len(c.Password) < minPasswordLen:
		return c, fmt.Errorf("%w: password must be at least %d characters", errBadRequest, minPasswordLen)
	}
	return c, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r, true)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), c.Email, c.Password, c.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("user registered", "user", result.User.ID)
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r, false)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// writeError maps service errors to a status. Unknown errors are logged
// and reported as internal.
func writeError(w http.ResponseWriter, err error) {
	var status int
	msg := err.Error()

	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		msg = strings.TrimPrefix(msg, errBadRequest.Error()+": ")
	case errors.Is(err, ErrEmailTaken):
		status, msg = http.StatusConflict, "email already registered"
	case errors.Is(err, ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, ErrUserNotFound):
		status, msg = http.StatusNotFound, "user not found"
	default:
		slog.Error("auth request failed", "error", err)
		status, msg = http.StatusInternalServerError, "internal error"
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
