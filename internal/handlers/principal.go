package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
	"go.uber.org/zap"
)

const defaultTokenTTL = 15 * time.Minute

// Principal is the caller resolved from a bearer token. Role is only set on
// routes that load the user.
type Principal struct {
	UserID string
	Role   string
}

// PrincipalHandlerFunc is an http.HandlerFunc that also receives the
// authenticated caller.
type PrincipalHandlerFunc func(w http.ResponseWriter, r *http.Request, p Principal)

// UserLookup is implemented by services.UserService.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (types.User, error)
}

// Authenticator issues session tokens and guards routes with them.
type Authenticator struct {
	users    UserLookup
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthenticator(users UserLookup, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *Authenticator {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Issue signs a session token for userID.
func (a *Authenticator) Issue(userID string) (string, error) {
	return issueToken(userID, a.secret, a.tokenTTL)
}

// Authenticated requires a valid bearer token.
func (a *Authenticator) Authenticated(next PrincipalHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.subject(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, Principal{UserID: userID})
	}
}

// Admin requires a valid bearer token whose user has the admin role.
func (a *Authenticator) Admin(next PrincipalHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.subject(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			a.logger.Error("load principal", zap.String("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load user")
			return
		}

		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r, Principal{UserID: user.ID, Role: user.Role})
	}
}

func (a *Authenticator) subject(r *http.Request) (string, bool) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return "", false
	}
	subject, err := parseTokenSubject(tokenString, a.secret)
	if err != nil {
		return "", false
	}
	return subject, true
}
