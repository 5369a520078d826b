package types

import "time"

// Term is a glossary entry: a word, its definition, and the context
// needed to understand it.
//
// Category and RelatedTerms are resolved on read. A term whose category
// was deleted carries a nil Category.
type Term struct {
	// ID is the unique identifier of the term.
	ID string `json:"_id" db:"id"`

	// Word is the unique headword being defined.
	Word string `json:"word" db:"word"`

	// Definition is the explanation of the word.
	Definition string `json:"definition" db:"definition"`

	// Category is the resolved category, or nil when the term is
	// uncategorized.
	Category *Category `json:"category"`

	// Examples are usage examples, kept in insertion order.
	Examples []string `json:"examples" db:"examples"`

	// RelatedTerms are the resolved terms this one links to, in the order
	// they were supplied.
	RelatedTerms []RelatedTerm `json:"relatedTerms"`

	// AddedBy is the id of the user who created the term, or nil when
	// that user no longer exists.
	AddedBy *string `json:"addedBy" db:"added_by"`

	// CreatedAt is the timestamp at which the term was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the term.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// RelatedTerm is a term embedded in another term's relatedTerms list.
// Its own references are not resolved: Category holds only the id.
type RelatedTerm struct {
	ID         string    `json:"_id"`
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	Category   *string   `json:"category"`
	Examples   []string  `json:"examples"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CategoryName returns the resolved category name, or "" when the term has
// no category.
func (t Term) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// TermFields are the writable fields of a term as persisted.
type TermFields struct {
	Word       string
	Definition string
	CategoryID *string
	Examples   []string
	RelatedIDs []string
}
