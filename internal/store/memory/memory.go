// Package memory provides in-process implementations of the store
// repositories. They follow the same reference rules as the Postgres
// schema: deleting a category clears it from its terms, and deleting a term
// removes it from every related-terms list.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
)

// Store holds all records behind one lock.
type Store struct {
	mu         sync.RWMutex
	seq        int
	users      map[string]types.User
	categories map[string]categoryRecord
	terms      map[string]termRecord
}

type categoryRecord struct {
	seq      int
	category types.Category
}

type termRecord struct {
	seq       int
	id        string
	fields    types.TermFields
	addedBy   *string
	createdAt time.Time
	updatedAt time.Time
}

func New() *Store {
	return &Store{
		users:      make(map[string]types.User),
		categories: make(map[string]categoryRecord),
		terms:      make(map[string]termRecord),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

func (s *Store) Terms() *TermRepository { return &TermRepository{s: s} }

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// UserRepository is an in-memory services.UserRepository.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(_ context.Context, id string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Update(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	for termID, record := range r.s.terms {
		if record.addedBy != nil && *record.addedBy == id {
			record.addedBy = nil
			r.s.terms[termID] = record
		}
	}
	return nil
}

// CategoryRepository is an in-memory services.CategoryRepository.
type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) List(_ context.Context, query string) ([]types.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := make([]categoryRecord, 0, len(r.s.categories))
	for _, record := range r.s.categories {
		if contains(query, record.category.Name, record.category.Description) {
			records = append(records, record)
		}
	}
	slices.SortFunc(records, func(a, b categoryRecord) int { return a.seq - b.seq })

	categories := make([]types.Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, record.category)
	}
	return categories, nil
}

func (r *CategoryRepository) Get(_ context.Context, id string) (types.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.categories[id]
	if !ok {
		return types.Category{}, store.ErrNotFound
	}
	return record.category, nil
}

func (r *CategoryRepository) Create(_ context.Context, category types.Category) (types.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.categoryNameTaken("", category.Name) {
		return types.Category{}, store.ErrConflict
	}
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now().UTC()
	r.s.categories[category.ID] = categoryRecord{seq: r.s.next(), category: category}
	return category, nil
}

func (r *CategoryRepository) Update(_ context.Context, category types.Category) (types.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.categories[category.ID]
	if !ok {
		return types.Category{}, store.ErrNotFound
	}
	if r.s.categoryNameTaken(category.ID, category.Name) {
		return types.Category{}, store.ErrConflict
	}
	category.CreatedAt = record.category.CreatedAt
	record.category = category
	r.s.categories[category.ID] = record
	return category, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.categories, id)
	for termID, record := range r.s.terms {
		if record.fields.CategoryID != nil && *record.fields.CategoryID == id {
			record.fields.CategoryID = nil
			r.s.terms[termID] = record
		}
	}
	return nil
}

func (s *Store) categoryNameTaken(selfID, name string) bool {
	for id, record := range s.categories {
		if id != selfID && record.category.Name == name {
			return true
		}
	}
	return false
}

// TermRepository is an in-memory services.TermRepository.
type TermRepository struct {
	s *Store
}

func (r *TermRepository) List(_ context.Context, filter store.TermFilter) ([]types.Term, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := make([]termRecord, 0, len(r.s.terms))
	for _, record := range r.s.terms {
		if filter.CategoryID != "" && (record.fields.CategoryID == nil || *record.fields.CategoryID != filter.CategoryID) {
			continue
		}
		term := r.s.resolve(record)
		if !contains(filter.Query, term.Word, term.Definition, term.CategoryName()) {
			continue
		}
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b termRecord) int { return a.seq - b.seq })

	terms := make([]types.Term, 0, len(records))
	for _, record := range records {
		terms = append(terms, r.s.resolve(record))
	}
	return terms, nil
}

func (r *TermRepository) Get(_ context.Context, id string) (types.Term, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.terms[id]
	if !ok {
		return types.Term{}, store.ErrNotFound
	}
	return r.s.resolve(record), nil
}

func (r *TermRepository) CountExisting(_ context.Context, ids []string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, id := range ids {
		if _, ok := r.s.terms[id]; ok {
			count++
		}
	}
	return count, nil
}

func (r *TermRepository) Create(_ context.Context, fields types.TermFields, addedBy string) (types.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkTerm("", fields); err != nil {
		return types.Term{}, err
	}

	now := time.Now().UTC()
	record := termRecord{
		seq:       r.s.next(),
		id:        uuid.NewString(),
		fields:    copyFields(fields),
		createdAt: now,
		updatedAt: now,
	}
	if addedBy != "" {
		record.addedBy = &addedBy
	}
	r.s.terms[record.id] = record
	return r.s.resolve(record), nil
}

func (r *TermRepository) Update(_ context.Context, id string, fields types.TermFields) (types.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record, ok := r.s.terms[id]
	if !ok {
		return types.Term{}, store.ErrNotFound
	}
	if err := r.s.checkTerm(id, fields); err != nil {
		return types.Term{}, err
	}
	record.fields = copyFields(fields)
	record.updatedAt = time.Now().UTC()
	r.s.terms[id] = record
	return r.s.resolve(record), nil
}

func (r *TermRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.terms[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.terms, id)
	for termID, record := range r.s.terms {
		if slices.Contains(record.fields.RelatedIDs, id) {
			record.fields.RelatedIDs = slices.DeleteFunc(slices.Clone(record.fields.RelatedIDs), func(v string) bool { return v == id })
			r.s.terms[termID] = record
		}
	}
	return nil
}

func (s *Store) checkTerm(selfID string, fields types.TermFields) error {
	for id, record := range s.terms {
		if id != selfID && record.fields.Word == fields.Word {
			return store.ErrConflict
		}
	}
	if fields.CategoryID != nil {
		if _, ok := s.categories[*fields.CategoryID]; !ok {
			return store.ErrReference
		}
	}
	for _, relatedID := range fields.RelatedIDs {
		if _, ok := s.terms[relatedID]; !ok {
			return store.ErrReference
		}
	}
	return nil
}

func (s *Store) resolve(record termRecord) types.Term {
	term := types.Term{
		ID:           record.id,
		Word:         record.fields.Word,
		Definition:   record.fields.Definition,
		Examples:     slices.Clone(record.fields.Examples),
		RelatedTerms: make([]types.RelatedTerm, 0, len(record.fields.RelatedIDs)),
		AddedBy:      copyString(record.addedBy),
		CreatedAt:    record.createdAt,
		UpdatedAt:    record.updatedAt,
	}
	if term.Examples == nil {
		term.Examples = []string{}
	}
	if record.fields.CategoryID != nil {
		if category, ok := s.categories[*record.fields.CategoryID]; ok {
			c := category.category
			term.Category = &c
		}
	}
	for _, relatedID := range record.fields.RelatedIDs {
		related, ok := s.terms[relatedID]
		if !ok {
			continue
		}
		examples := slices.Clone(related.fields.Examples)
		if examples == nil {
			examples = []string{}
		}
		term.RelatedTerms = append(term.RelatedTerms, types.RelatedTerm{
			ID:         related.id,
			Word:       related.fields.Word,
			Definition: related.fields.Definition,
			Category:   copyString(related.fields.CategoryID),
			Examples:   examples,
			CreatedAt:  related.createdAt,
			UpdatedAt:  related.updatedAt,
		})
	}
	return term
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyFields(fields types.TermFields) types.TermFields {
	out := fields
	out.CategoryID = copyString(fields.CategoryID)
	out.Examples = slices.Clone(fields.Examples)
	out.RelatedIDs = slices.Clone(fields.RelatedIDs)
	return out
}

func contains(query string, values ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), query) {
			return true
		}
	}
	return false
}
