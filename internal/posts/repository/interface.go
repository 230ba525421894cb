package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Persisted lifecycle states. The observable "archived" state is derived at
// read time, never stored.
const (
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

// Post is a scheduled publication.
type Post struct {
	ID             uuid.UUID `db:"id"`
	PharmacyID     uuid.UUID `db:"pharmacy_id"`
	PharmacyName   string    `db:"pharmacy_name"`
	ImageKey       string    `db:"image_key"`
	ScheduledAt    time.Time `db:"scheduled_at"`
	Status         string    `db:"status"`
	FacebookPostID string    `db:"facebook_post_id"`
	RadiusKm       int       `db:"radius_km"`
	CreatedAt      string    `db:"created_at"`
	UpdatedAt      string    `db:"updated_at"`
}

// CreateParams contains parameters for recording a scheduled publication.
type CreateParams struct {
	PharmacyID     uuid.UUID
	ImageKey       string
	ScheduledAt    time.Time
	FacebookPostID string
	RadiusKm       int
}

// PostReader provides read operations for posts.
type PostReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Post, error)
	List(ctx context.Context) ([]Post, error)
	// ExistsActiveOn reports whether a non-cancelled publication exists for
	// the pharmacy on the given calendar day (date-only comparison).
	ExistsActiveOn(ctx context.Context, pharmacyID uuid.UUID, day time.Time) (bool, error)
}

// PostWriter provides write operations for posts.
type PostWriter interface {
	Create(ctx context.Context, params CreateParams) (Post, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteAll(ctx context.Context) error
}

// MessageStore provides the shared singleton publication message.
type MessageStore interface {
	GetMessage(ctx context.Context) (string, error)
	// UpsertMessage creates the message on first save and updates it
	// thereafter. Returns true when a new row was inserted.
	UpsertMessage(ctx context.Context, content string) (bool, error)
}

// Repository combines all posts repository operations.
type Repository interface {
	PostReader
	PostWriter
	MessageStore
}
