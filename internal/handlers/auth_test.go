package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "secret",
	})
	require.Equal(t, http.StatusCreated, resp.status)
	var message MessageResponse
	resp.decode(t, &message)
	assert.NotEmpty(t, message.Message)
	assert.NotContains(t, string(resp.body), "token")

	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, strings.ToLower(string(resp.body)), "password")
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID        string `json:"_id"`
			FirstName string `json:"firstName"`
			Email     string `json:"email"`
			Role      string `json:"role"`
		} `json:"user"`
	}
	resp.decode(t, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "Ada", login.User.FirstName)
	assert.Equal(t, "user", login.User.Role)

	resp = api.do(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	var me struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	}
	resp.decode(t, &me)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, login.User.ID, me.ID)

	resp = api.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"email": "a@example.com", "password": "pw"}

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/auth/register", "", body).status)

	resp := api.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.status)
}

func TestRegisterMissingFields(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	var errResp ErrorResponse
	resp.decode(t, &errResp)
	assert.Equal(t, "email and password are required", errResp.Error)
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t)
	api.tokenFor(t, "a@example.com", false)

	resp := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "b@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestMeForDeletedUser(t *testing.T) {
	api := newTestAPI(t)
	token, err := api.auth.Issue("6f1c9a52-0000-4000-8000-000000000000")
	require.NoError(t, err)

	resp := api.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestExpiredAndForeignTokensRejected(t *testing.T) {
	api := newTestAPI(t)

	expired, err := issueToken("u-1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/auth/me", expired, nil).status)

	foreign, err := issueToken("u-1", []byte("other-secret"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/auth/me", foreign, nil).status)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := issueToken("u-1", []byte("s"), time.Minute)
	require.NoError(t, err)

	subject, err := parseTokenSubject(token, []byte("s"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", subject)
}
