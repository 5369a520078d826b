package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Minute},
		MQ:   config.MQConfig{Backend: config.MQBackendNone, Channel: "glossary.events"},
	}
}

func request(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthScenario(t *testing.T) {
	router := NewRouter(Deps{Config: testConfig(), Repos: MemoryRepositories()})

	rec := request(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = request(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = request(t, router, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)

	rec = request(t, router, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGlossaryScenario(t *testing.T) {
	repos := MemoryRepositories()
	router := NewRouter(Deps{Config: testConfig(), Repos: repos})

	users := services.NewUserService(repos.Users)
	_, err := users.Register(context.Background(), services.RegisterInput{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = users.SetRole(context.Background(), "admin@example.com", "admin")
	require.NoError(t, err)

	rec := request(t, router, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = request(t, router, http.MethodPost, "/categories", login.Token, map[string]string{"name": "Tech"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var category struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))

	rec = request(t, router, http.MethodPost, "/terms", login.Token, map[string]string{
		"word":       "API",
		"definition": "Application Programming Interface",
		"category":   category.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var term struct {
		ID       string `json:"_id"`
		Category struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		} `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &term))
	assert.Equal(t, category.ID, term.Category.ID)
	assert.Equal(t, "Tech", term.Category.Name)

	rec = request(t, router, http.MethodDelete, "/categories/"+category.ID, login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, router, http.MethodGet, "/terms/"+term.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":null`)
}

func TestExportRoutesNeedStorage(t *testing.T) {
	router := NewRouter(Deps{Config: testConfig(), Repos: MemoryRepositories()})

	rec := request(t, router, http.MethodPost, "/exports", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRequiresJWTSecret(t *testing.T) {
	_, err := New(context.Background(), config.Config{}, nil, WithInMemoryStore())
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestNewInMemory(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), nil, WithInMemoryStore())
	require.NoError(t, err)

	rec := request(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, srv.Shutdown(context.Background()))
}
