package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
)

// TermRepository defines persistence operations for terms.
type TermRepository interface {
	List(ctx context.Context, filter store.TermFilter) ([]types.Term, error)
	Get(ctx context.Context, id string) (types.Term, error)
	CountExisting(ctx context.Context, ids []string) (int, error)
	Create(ctx context.Context, fields types.TermFields, addedBy string) (types.Term, error)
	Update(ctx context.Context, id string, fields types.TermFields) (types.Term, error)
	Delete(ctx context.Context, id string) error
}

// CategoryLookup resolves category references on term writes.
type CategoryLookup interface {
	Get(ctx context.Context, id string) (types.Category, error)
}

// TermInput carries the fields of a new term. Category and RelatedTerms
// hold ids.
type TermInput struct {
	Word         string
	Definition   string
	Category     string
	Examples     []string
	RelatedTerms []string
}

// TermPatch carries the fields to change on a term. Nil fields are left
// untouched; an empty Category clears the category.
type TermPatch struct {
	Word         *string
	Definition   *string
	Category     *string
	Examples     *[]string
	RelatedTerms *[]string
}

// TermService encapsulates term use-cases.
type TermService struct {
	terms      TermRepository
	categories CategoryLookup
	events     *Notifier
}

func NewTermService(terms TermRepository, categories CategoryLookup, events *Notifier) *TermService {
	return &TermService{terms: terms, categories: categories, events: events}
}

// List returns all terms, or those matching query when it is not blank.
func (s *TermService) List(ctx context.Context, query string) ([]types.Term, error) {
	return s.terms.List(ctx, store.TermFilter{Query: query})
}

// ListByCategory returns the terms of one category. An unknown category
// yields an empty list.
func (s *TermService) ListByCategory(ctx context.Context, categoryID string) ([]types.Term, error) {
	return s.terms.List(ctx, store.TermFilter{CategoryID: categoryID})
}

func (s *TermService) Get(ctx context.Context, id string) (types.Term, error) {
	return s.terms.Get(ctx, id)
}

// Related returns the related terms of the term with the given id.
func (s *TermService) Related(ctx context.Context, id string) ([]types.RelatedTerm, error) {
	term, err := s.terms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return term.RelatedTerms, nil
}

func (s *TermService) Create(ctx context.Context, actorID string, input TermInput) (types.Term, error) {
	fields := types.TermFields{
		Word:       strings.TrimSpace(input.Word),
		Definition: strings.TrimSpace(input.Definition),
		Examples:   cleanExamples(input.Examples),
		RelatedIDs: dedupe(input.RelatedTerms),
	}
	if fields.Word == "" || fields.Definition == "" {
		return types.Term{}, fmt.Errorf("%w: word and definition are required", ErrInvalidInput)
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		fields.CategoryID = &category
	}

	if err := s.checkReferences(ctx, "", fields); err != nil {
		return types.Term{}, err
	}

	term, err := s.terms.Create(ctx, fields, actorID)
	if err != nil {
		return types.Term{}, err
	}
	s.events.Notify(ctx, types.EventTermCreated, term.ID, actorID)
	return term, nil
}

// Update applies patch to the term and returns the stored, resolved result.
func (s *TermService) Update(ctx context.Context, actorID, id string, patch TermPatch) (types.Term, error) {
	current, err := s.terms.Get(ctx, id)
	if err != nil {
		return types.Term{}, err
	}

	fields := fieldsOf(current)
	if patch.Word != nil {
		fields.Word = strings.TrimSpace(*patch.Word)
	}
	if patch.Definition != nil {
		fields.Definition = strings.TrimSpace(*patch.Definition)
	}
	if fields.Word == "" || fields.Definition == "" {
		return types.Term{}, fmt.Errorf("%w: word and definition cannot be empty", ErrInvalidInput)
	}
	if patch.Category != nil {
		fields.CategoryID = nil
		if category := strings.TrimSpace(*patch.Category); category != "" {
			fields.CategoryID = &category
		}
	}
	if patch.Examples != nil {
		fields.Examples = cleanExamples(*patch.Examples)
	}
	if patch.RelatedTerms != nil {
		fields.RelatedIDs = dedupe(*patch.RelatedTerms)
	}

	if err := s.checkReferences(ctx, id, fields); err != nil {
		return types.Term{}, err
	}

	term, err := s.terms.Update(ctx, id, fields)
	if err != nil {
		return types.Term{}, err
	}
	s.events.Notify(ctx, types.EventTermUpdated, term.ID, actorID)
	return term, nil
}

func (s *TermService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.terms.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Notify(ctx, types.EventTermDeleted, id, actorID)
	return nil
}

// checkReferences verifies that the category and related terms exist.
// selfID is the id of the term being updated, or "" on create.
func (s *TermService) checkReferences(ctx context.Context, selfID string, fields types.TermFields) error {
	if fields.CategoryID != nil {
		if !isID(*fields.CategoryID) {
			return ErrCategoryNotFound
		}
		if _, err := s.categories.Get(ctx, *fields.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("load category: %w", err)
		}
	}

	if len(fields.RelatedIDs) == 0 {
		return nil
	}
	for _, relatedID := range fields.RelatedIDs {
		if selfID != "" && relatedID == selfID {
			return fmt.Errorf("%w: a term cannot be related to itself", ErrInvalidInput)
		}
		if !isID(relatedID) {
			return ErrRelatedTermNotFound
		}
	}
	count, err := s.terms.CountExisting(ctx, fields.RelatedIDs)
	if err != nil {
		return fmt.Errorf("load related terms: %w", err)
	}
	if count != len(fields.RelatedIDs) {
		return ErrRelatedTermNotFound
	}
	return nil
}

func fieldsOf(term types.Term) types.TermFields {
	fields := types.TermFields{
		Word:       term.Word,
		Definition: term.Definition,
		Examples:   term.Examples,
		RelatedIDs: make([]string, 0, len(term.RelatedTerms)),
	}
	if term.Category != nil {
		categoryID := term.Category.ID
		fields.CategoryID = &categoryID
	}
	for _, related := range term.RelatedTerms {
		fields.RelatedIDs = append(fields.RelatedIDs, related.ID)
	}
	return fields
}

func cleanExamples(examples []string) []string {
	cleaned := make([]string, 0, len(examples))
	for _, example := range examples {
		if example = strings.TrimSpace(example); example != "" {
			cleaned = append(cleaned, example)
		}
	}
	return cleaned
}

// dedupe drops blanks and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
