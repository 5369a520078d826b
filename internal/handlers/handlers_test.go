package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/internal/store/memory"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testAPI struct {
	server *httptest.Server
	users  *services.UserService
	auth   *Authenticator
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	s := memory.New()
	users := services.NewUserService(s.Users())
	categories := services.NewCategoryService(s.Categories(), nil)
	terms := services.NewTermService(s.Terms(), s.Categories(), nil)
	auth := NewAuthenticator(users, testSecret, time.Minute, nil)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, users, auth, nil)
	})
	router.Route("/categories", func(r chi.Router) {
		CategoryRouter(r, categories, terms, auth, nil)
	})
	router.Route("/terms", func(r chi.Router) {
		TermRouter(r, terms, auth, nil)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testAPI{server: server, users: users, auth: auth}
}

// adminToken registers an admin account and returns a token for it.
func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	return a.tokenFor(t, "admin@example.com", true)
}

func (a *testAPI) tokenFor(t *testing.T, email string, admin bool) string {
	t.Helper()
	ctx := context.Background()

	user, err := a.users.Register(ctx, services.RegisterInput{Email: email, Password: "pw"})
	require.NoError(t, err)
	if admin {
		_, err = a.users.SetRole(ctx, email, "admin")
		require.NoError(t, err)
	}
	token, err := a.auth.Issue(user.ID)
	require.NoError(t, err)
	return token
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: data}
}
