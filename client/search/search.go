// Package search keeps fetched glossary collections in memory and filters
// them locally.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jjudge-oj/glossary/types"
	"golang.org/x/sync/errgroup"
)

// FilterTerms returns the terms whose word, definition or category name
// contains query, ignoring case. A blank query returns terms unchanged.
func FilterTerms(terms []types.Term, query string) []types.Term {
	needle := normalize(query)
	if needle == "" {
		return terms
	}
	out := make([]types.Term, 0, len(terms))
	for _, term := range terms {
		if matches(needle, term.Word, term.Definition, term.CategoryName()) {
			out = append(out, term)
		}
	}
	return out
}

// FilterCategories returns the categories whose name or description
// contains query, ignoring case. A blank query returns categories unchanged.
func FilterCategories(categories []types.Category, query string) []types.Category {
	needle := normalize(query)
	if needle == "" {
		return categories
	}
	out := make([]types.Category, 0, len(categories))
	for _, category := range categories {
		if matches(needle, category.Name, category.Description) {
			out = append(out, category)
		}
	}
	return out
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func matches(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// TermLister is implemented by client.TermsAPI.
type TermLister interface {
	List(ctx context.Context, query string) ([]types.Term, error)
}

// CategoryLister is implemented by client.CategoriesAPI.
type CategoryLister interface {
	List(ctx context.Context, query string) ([]types.Category, error)
}

// Glossary holds the full collections and the views filtered by the
// current query.
type Glossary struct {
	terms      TermLister
	categories CategoryLister

	mu                 sync.RWMutex
	query              string
	allTerms           []types.Term
	allCategories      []types.Category
	filteredTerms      []types.Term
	filteredCategories []types.Category
}

func NewGlossary(terms TermLister, categories CategoryLister) *Glossary {
	return &Glossary{terms: terms, categories: categories}
}

// Load fetches terms and categories concurrently. The state changes only
// when both fetches succeed.
func (g *Glossary) Load(ctx context.Context) error {
	var terms []types.Term
	var categories []types.Category

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		terms, err = g.terms.List(ctx, "")
		if err != nil {
			return fmt.Errorf("load terms: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		categories, err = g.categories.List(ctx, "")
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.allTerms = terms
	g.allCategories = categories
	g.refilter()
	return nil
}

// SetQuery recomputes the filtered views.
func (g *Glossary) SetQuery(query string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.query = query
	g.refilter()
}

func (g *Glossary) Query() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.query
}

// Terms returns the terms matching the current query.
func (g *Glossary) Terms() []types.Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.Term(nil), g.filteredTerms...)
}

// Categories returns the categories matching the current query.
func (g *Glossary) Categories() []types.Category {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.Category(nil), g.filteredCategories...)
}

// AllTerms returns every loaded term regardless of the query.
func (g *Glossary) AllTerms() []types.Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.Term(nil), g.allTerms...)
}

func (g *Glossary) AllCategories() []types.Category {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.Category(nil), g.allCategories...)
}

func (g *Glossary) refilter() {
	g.filteredTerms = FilterTerms(g.allTerms, g.query)
	g.filteredCategories = FilterCategories(g.allCategories, g.query)
}
