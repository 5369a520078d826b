package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jjudge-oj/glossary/types"
)

// AuthAPI covers registration and sessions.
type AuthAPI struct {
	client *Client
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and returns the server's message.
func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp messageResponse
	if err := a.client.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login signs in and stores the returned token.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (types.User, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.client.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return types.User{}, err
	}
	if err := a.client.tokens.SetToken(resp.Token); err != nil {
		return types.User{}, fmt.Errorf("store token: %w", err)
	}
	return resp.User, nil
}

func (a *AuthAPI) Me(ctx context.Context) (types.User, error) {
	var user types.User
	err := a.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

// Logout forgets the stored token. Tokens are stateless, so the server is
// not contacted.
func (a *AuthAPI) Logout() error {
	return a.client.tokens.Clear()
}

// CategoryInput is the body of a category create.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryPatch is the body of a category update. Nil fields are kept.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CategoriesAPI covers /categories.
type CategoriesAPI struct {
	client *Client
}

// List returns all categories, or those matching query when it is not
// blank.
func (a *CategoriesAPI) List(ctx context.Context, query string) ([]types.Category, error) {
	var categories []types.Category
	err := a.client.do(ctx, http.MethodGet, "/categories", searchQuery(query), nil, &categories)
	return categories, err
}

func (a *CategoriesAPI) Get(ctx context.Context, id string) (types.Category, error) {
	var category types.Category
	err := a.client.do(ctx, http.MethodGet, "/categories/"+id, nil, nil, &category)
	return category, err
}

func (a *CategoriesAPI) Create(ctx context.Context, input CategoryInput) (types.Category, error) {
	var category types.Category
	err := a.client.do(ctx, http.MethodPost, "/categories", nil, input, &category)
	return category, err
}

func (a *CategoriesAPI) Update(ctx context.Context, id string, patch CategoryPatch) (types.Category, error) {
	var category types.Category
	err := a.client.do(ctx, http.MethodPut, "/categories/"+id, nil, patch, &category)
	return category, err
}

func (a *CategoriesAPI) Delete(ctx context.Context, id string) error {
	return a.client.do(ctx, http.MethodDelete, "/categories/"+id, nil, nil, nil)
}

// Terms returns the terms filed under the category.
func (a *CategoriesAPI) Terms(ctx context.Context, id string) ([]types.Term, error) {
	var terms []types.Term
	err := a.client.do(ctx, http.MethodGet, "/categories/"+id+"/terms", nil, nil, &terms)
	return terms, err
}

// TermInput is the body of a term create. Category and RelatedTerms hold
// ids.
type TermInput struct {
	Word         string   `json:"word"`
	Definition   string   `json:"definition"`
	Category     string   `json:"category,omitempty"`
	Examples     []string `json:"examples,omitempty"`
	RelatedTerms []string `json:"relatedTerms,omitempty"`
}

// TermPatch is the body of a term update. Nil fields are kept; an empty
// Category clears it.
type TermPatch struct {
	Word         *string   `json:"word,omitempty"`
	Definition   *string   `json:"definition,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Examples     *[]string `json:"examples,omitempty"`
	RelatedTerms *[]string `json:"relatedTerms,omitempty"`
}

// TermsAPI covers /terms.
type TermsAPI struct {
	client *Client
}

// List returns all terms, or those matching query when it is not blank.
func (a *TermsAPI) List(ctx context.Context, query string) ([]types.Term, error) {
	var terms []types.Term
	err := a.client.do(ctx, http.MethodGet, "/terms", searchQuery(query), nil, &terms)
	return terms, err
}

func (a *TermsAPI) Get(ctx context.Context, id string) (types.Term, error) {
	var term types.Term
	err := a.client.do(ctx, http.MethodGet, "/terms/"+id, nil, nil, &term)
	return term, err
}

func (a *TermsAPI) Create(ctx context.Context, input TermInput) (types.Term, error) {
	var term types.Term
	err := a.client.do(ctx, http.MethodPost, "/terms", nil, input, &term)
	return term, err
}

func (a *TermsAPI) Update(ctx context.Context, id string, patch TermPatch) (types.Term, error) {
	var term types.Term
	err := a.client.do(ctx, http.MethodPut, "/terms/"+id, nil, patch, &term)
	return term, err
}

func (a *TermsAPI) Delete(ctx context.Context, id string) error {
	return a.client.do(ctx, http.MethodDelete, "/terms/"+id, nil, nil, nil)
}

func (a *TermsAPI) Related(ctx context.Context, id string) ([]types.RelatedTerm, error) {
	var related []types.RelatedTerm
	err := a.client.do(ctx, http.MethodGet, "/terms/"+id+"/related", nil, nil, &related)
	return related, err
}

// ExportsAPI covers /exports.
type ExportsAPI struct {
	client *Client
}

func (a *ExportsAPI) Create(ctx context.Context) (types.Export, error) {
	var export types.Export
	err := a.client.do(ctx, http.MethodPost, "/exports", nil, nil, &export)
	return export, err
}

// Download streams the snapshot stored under key. The caller closes it.
func (a *ExportsAPI) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := a.client.send(ctx, http.MethodGet, "/exports/"+strings.TrimPrefix(key, "exports/"), nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Delete removes the snapshot stored under key.
func (a *ExportsAPI) Delete(ctx context.Context, key string) error {
	return a.client.do(ctx, http.MethodDelete, "/exports/"+strings.TrimPrefix(key, "exports/"), nil, nil, nil)
}

func searchQuery(query string) url.Values {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return url.Values{"q": []string{query}}
}
