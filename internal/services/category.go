package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jjudge-oj/glossary/types"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context, query string) ([]types.Category, error)
	Get(ctx context.Context, id string) (types.Category, error)
	Create(ctx context.Context, category types.Category) (types.Category, error)
	Update(ctx context.Context, category types.Category) (types.Category, error)
	Delete(ctx context.Context, id string) error
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryPatch carries the fields to change on a category. Nil fields are
// left untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// CategoryService encapsulates category use-cases.
type CategoryService struct {
	repo   CategoryRepository
	events *Notifier
}

func NewCategoryService(repo CategoryRepository, events *Notifier) *CategoryService {
	return &CategoryService{repo: repo, events: events}
}

func (s *CategoryService) List(ctx context.Context, query string) ([]types.Category, error) {
	return s.repo.List(ctx, query)
}

func (s *CategoryService) Get(ctx context.Context, id string) (types.Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, actorID string, input CategoryInput) (types.Category, error) {
	category := types.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if category.Name == "" {
		return types.Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return types.Category{}, err
	}
	s.events.Notify(ctx, types.EventCategoryCreated, created.ID, actorID)
	return created, nil
}

// Update applies patch to the category and returns the stored result.
func (s *CategoryService) Update(ctx context.Context, actorID, id string, patch CategoryPatch) (types.Category, error) {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Category{}, err
	}

	if patch.Name != nil {
		category.Name = strings.TrimSpace(*patch.Name)
		if category.Name == "" {
			return types.Category{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
	}
	if patch.Description != nil {
		category.Description = strings.TrimSpace(*patch.Description)
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return types.Category{}, err
	}
	s.events.Notify(ctx, types.EventCategoryUpdated, updated.ID, actorID)
	return updated, nil
}

// Delete removes the category. Terms in it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Notify(ctx, types.EventCategoryDeleted, id, actorID)
	return nil
}
