package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/glossary/types"
	"github.com/lib/pq"
)

// TermFilter narrows a term listing.
type TermFilter struct {
	// Query keeps terms whose word, definition or category name contains
	// it, ignoring case.
	Query string

	// CategoryID keeps terms in one category.
	CategoryID string
}

// TermRepository handles persistence for terms and their relations.
type TermRepository struct {
	db *sql.DB
}

func NewTermRepository(db *sql.DB) *TermRepository {
	return &TermRepository{db: db}
}

const termSelect = `
		SELECT t.id, t.word, t.definition, t.examples, t.added_by, t.created_at, t.updated_at,
			c.id, c.name, c.description, c.created_at
		FROM terms t
		LEFT JOIN categories c ON c.id = t.category_id`

// List returns terms with category and related terms resolved.
func (r *TermRepository) List(ctx context.Context, filter TermFilter) ([]types.Term, error) {
	var conditions []string
	var args []any
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, containsPattern(q))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(t.word ILIKE $%d OR t.definition ILIKE $%d OR c.name ILIKE $%d)", n, n, n))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("t.category_id = $%d", len(args)))
	}

	stmt := termSelect
	if len(conditions) > 0 {
		stmt += `
		WHERE ` + strings.Join(conditions, " AND ")
	}
	stmt += `
		ORDER BY t.created_at, t.word`

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make([]types.Term, 0)
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachRelated(ctx, terms); err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *TermRepository) Get(ctx context.Context, id string) (types.Term, error) {
	term, err := scanTerm(r.db.QueryRowContext(ctx, termSelect+`
		WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Term{}, ErrNotFound
		}
		return types.Term{}, err
	}

	terms := []types.Term{term}
	if err := r.attachRelated(ctx, terms); err != nil {
		return types.Term{}, err
	}
	return terms[0], nil
}

// CountExisting returns how many of ids name an existing term.
func (r *TermRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `SELECT COUNT(1) FROM terms WHERE id = ANY($1::uuid[])`
	var count int
	if err := r.db.QueryRowContext(ctx, query, pq.Array(ids)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a term and its relations in one transaction and returns
// the resolved term.
func (r *TermRepository) Create(ctx context.Context, fields types.TermFields, addedBy string) (types.Term, error) {
	examplesJSON, err := encodeExamples(fields.Examples)
	if err != nil {
		return types.Term{}, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	var author *string
	if addedBy != "" {
		author = &addedBy
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
			INSERT INTO terms (id, word, definition, category_id, examples, added_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.ExecContext(
			ctx,
			query,
			id,
			fields.Word,
			fields.Definition,
			fields.CategoryID,
			examplesJSON,
			author,
			now,
			now,
		); err != nil {
			return mapError(err)
		}
		return insertRelations(ctx, tx, id, fields.RelatedIDs)
	})
	if err != nil {
		return types.Term{}, err
	}
	return r.Get(ctx, id)
}

// Update replaces the writable fields and relations of a term and returns
// the resolved term.
func (r *TermRepository) Update(ctx context.Context, id string, fields types.TermFields) (types.Term, error) {
	examplesJSON, err := encodeExamples(fields.Examples)
	if err != nil {
		return types.Term{}, err
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
			UPDATE terms
			SET word = $1,
				definition = $2,
				category_id = $3,
				examples = $4,
				updated_at = $5
			WHERE id = $6`
		result, err := tx.ExecContext(
			ctx,
			query,
			fields.Word,
			fields.Definition,
			fields.CategoryID,
			examplesJSON,
			time.Now().UTC(),
			id,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM term_relations WHERE term_id = $1`, id); err != nil {
			return err
		}
		return insertRelations(ctx, tx, id, fields.RelatedIDs)
	})
	if err != nil {
		return types.Term{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes a term. Relation rows on either side are removed by the
// foreign keys in the same statement.
func (r *TermRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM terms WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TermRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertRelations(ctx context.Context, tx *sql.Tx, termID string, relatedIDs []string) error {
	const query = `
		INSERT INTO term_relations (term_id, related_id, position)
		VALUES ($1, $2, $3)`
	for position, relatedID := range relatedIDs {
		if _, err := tx.ExecContext(ctx, query, termID, relatedID, position); err != nil {
			return mapError(err)
		}
	}
	return nil
}

// attachRelated loads the related terms of every term in one query.
func (r *TermRepository) attachRelated(ctx context.Context, terms []types.Term) error {
	if len(terms) == 0 {
		return nil
	}

	ids := make([]string, len(terms))
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		ids[i] = term.ID
		index[term.ID] = i
	}

	const query = `
		SELECT r.term_id, t.id, t.word, t.definition, t.category_id, t.examples, t.created_at, t.updated_at
		FROM term_relations r
		JOIN terms t ON t.id = r.related_id
		WHERE r.term_id = ANY($1::uuid[])
		ORDER BY r.term_id, r.position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID string
		var related types.RelatedTerm
		var categoryID sql.NullString
		var examplesJSON []byte
		if err := rows.Scan(
			&ownerID,
			&related.ID,
			&related.Word,
			&related.Definition,
			&categoryID,
			&examplesJSON,
			&related.CreatedAt,
			&related.UpdatedAt,
		); err != nil {
			return err
		}
		if categoryID.Valid {
			related.Category = &categoryID.String
		}
		related.Examples = decodeExamples(examplesJSON)

		if i, ok := index[ownerID]; ok {
			terms[i].RelatedTerms = append(terms[i].RelatedTerms, related)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTerm(row rowScanner) (types.Term, error) {
	var term types.Term
	var examplesJSON []byte
	var addedBy sql.NullString
	var categoryID, categoryName, categoryDesc sql.NullString
	var categoryCreated sql.NullTime
	if err := row.Scan(
		&term.ID,
		&term.Word,
		&term.Definition,
		&examplesJSON,
		&addedBy,
		&term.CreatedAt,
		&term.UpdatedAt,
		&categoryID,
		&categoryName,
		&categoryDesc,
		&categoryCreated,
	); err != nil {
		return types.Term{}, err
	}

	term.Examples = decodeExamples(examplesJSON)
	term.RelatedTerms = []types.RelatedTerm{}
	if addedBy.Valid {
		term.AddedBy = &addedBy.String
	}
	if categoryID.Valid {
		term.Category = &types.Category{
			ID:          categoryID.String,
			Name:        categoryName.String,
			Description: categoryDesc.String,
			CreatedAt:   categoryCreated.Time,
		}
	}
	return term, nil
}

// encodeExamples returns the JSONB literal for examples. It is passed as a
// string because lib/pq sends []byte as bytea.
func encodeExamples(examples []string) (string, error) {
	if examples == nil {
		examples = []string{}
	}
	data, err := json.Marshal(examples)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeExamples(data []byte) []string {
	examples := []string{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &examples)
	}
	return examples
}
