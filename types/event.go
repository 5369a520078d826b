package types

import "time"

// EventType names a change to the glossary.
type EventType string

const (
	EventCategoryCreated EventType = "category.created"
	EventCategoryUpdated EventType = "category.updated"
	EventCategoryDeleted EventType = "category.deleted"
	EventTermCreated     EventType = "term.created"
	EventTermUpdated     EventType = "term.updated"
	EventTermDeleted     EventType = "term.deleted"
	EventExportCreated   EventType = "export.created"
	EventExportDeleted   EventType = "export.deleted"
)

// GlossaryEvent is published on the message queue after a successful write.
type GlossaryEvent struct {
	// Type is the kind of change.
	Type EventType `json:"type"`

	// ResourceID is the id of the category, term or export affected.
	ResourceID string `json:"resourceId"`

	// ActorID is the id of the user that performed the change.
	ActorID string `json:"actorId,omitempty"`

	// OccurredAt is when the change was committed.
	OccurredAt time.Time `json:"occurredAt"`
}

// Export describes a glossary snapshot written to object storage.
type Export struct {
	// Key is the object key of the snapshot.
	Key string `json:"key"`

	// Size is the snapshot size in bytes.
	Size int64 `json:"size"`

	// SHA256 is the hex-encoded digest of the snapshot contents.
	SHA256 string `json:"sha256"`

	// URL is a time-limited download link, set when the storage backend
	// can presign requests.
	URL string `json:"url,omitempty"`
}

// Snapshot is the document stored by an export.
type Snapshot struct {
	ExportedAt time.Time  `json:"exportedAt"`
	Categories []Category `json:"categories"`
	Terms      []Term     `json:"terms"`
}
