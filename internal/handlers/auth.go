package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/types"
	"go.uber.org/zap"
)

// AuthHandler provides registration, login and identity endpoints.
type AuthHandler struct {
	userService *services.UserService
	auth        *Authenticator
	logger      *zap.Logger
}

func NewAuthHandler(userService *services.UserService, auth *Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{userService: userService, auth: auth, logger: logger}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, auth *Authenticator, logger *zap.Logger) {
	handler := NewAuthHandler(userService, auth, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/me", auth.Authenticated(handler.Me))
}

// Register creates a new user account. It does not sign the user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "user")
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "user")
		return
	}

	token, err := h.auth.Issue(user.ID)
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, p Principal) {
	user, err := h.userService.GetByID(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
