package types

import "time"

// Category groups related glossary terms.
type Category struct {
	// ID is the unique identifier of the category.
	ID string `json:"_id" db:"id"`

	// Name is the unique display name of the category.
	Name string `json:"name" db:"name"`

	// Description is an optional free-form summary.
	Description string `json:"description" db:"description"`

	// CreatedAt is the timestamp at which the category was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
