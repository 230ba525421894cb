package repository

import (
	"context"

	"github.com/google/uuid"
)

// API modes selecting the coverage policy of the duty data source.
const (
	ModePublic  = "public"
	ModePrivate = "private"
)

// Recurrence frequencies.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
)

// Pharmacy is the recurring publication subject.
type Pharmacy struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	Address         string    `db:"address"`
	Latitude        *float64  `db:"latitude"`
	Longitude       *float64  `db:"longitude"`
	FacebookPageID  string    `db:"facebook_page_id"`
	PageAccessToken string    `db:"page_access_token"`
	DutyAPIToken    string    `db:"duty_api_token"`
	APIMode         string    `db:"api_mode"`
	Weekday         int       `db:"weekday"`
	Frequency       string    `db:"frequency"`
	RadiusKm        int       `db:"radius_km"`
	CreatedAt       string    `db:"created_at"`
	UpdatedAt       string    `db:"updated_at"`
}

// HasCoordinates reports whether the pharmacy has been geocoded.
func (p Pharmacy) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// CreateParams contains parameters for creating a pharmacy.
type CreateParams struct {
	Name            string
	Address         string
	FacebookPageID  string
	PageAccessToken string
	DutyAPIToken    string
	APIMode         string
	Weekday         int
	Frequency       string
	RadiusKm        int
}

// UpdateParams contains parameters for updating a pharmacy. Nil fields are
// left unchanged.
type UpdateParams struct {
	ID              uuid.UUID
	Name            *string
	Address         *string
	FacebookPageID  *string
	PageAccessToken *string
	DutyAPIToken    *string
	APIMode         *string
	Weekday         *int
	Frequency       *string
	RadiusKm        *int
}

// PharmacyReader provides read operations for pharmacies.
type PharmacyReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Pharmacy, error)
	List(ctx context.Context) ([]Pharmacy, error)
}

// PharmacyWriter provides write operations for pharmacies.
type PharmacyWriter interface {
	Create(ctx context.Context, params CreateParams) (Pharmacy, error)
	Update(ctx context.Context, params UpdateParams) (Pharmacy, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateCoordinates backfills geocoded coordinates. Coordinates are
	// written once; a pharmacy with populated coordinates is never
	// re-geocoded.
	UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lon float64) error
}

// Repository combines all pharmacy repository operations.
type Repository interface {
	PharmacyReader
	PharmacyWriter
}
