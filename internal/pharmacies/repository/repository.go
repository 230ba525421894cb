package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amarfts/ph-scheduler/platform/apperr"
)

const pharmacyNotFoundMessage = "pharmacy not found"

const pharmacyColumns = `id, name, address, latitude, longitude, facebook_page_id,
	page_access_token, duty_api_token, api_mode, weekday, frequency, radius_km,
	created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new pharmacies repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a pharmacy by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Pharmacy, error) {
	query := fmt.Sprintf(`SELECT %s FROM pharmacies WHERE id = $1`, pharmacyColumns)

	p, err := scanPharmacy(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pharmacy{}, apperr.NotFound(pharmacyNotFoundMessage)
		}
		return Pharmacy{}, fmt.Errorf("get pharmacy by id: %w", err)
	}

	return p, nil
}

// List retrieves all pharmacies ordered by name.
func (r *Repo) List(ctx context.Context) ([]Pharmacy, error) {
	query := fmt.Sprintf(`SELECT %s FROM pharmacies ORDER BY name`, pharmacyColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pharmacies: %w", err)
	}
	defer rows.Close()

	pharmacies := make([]Pharmacy, 0)
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pharmacy: %w", err)
		}
		pharmacies = append(pharmacies, p)
	}

	return pharmacies, rows.Err()
}

// Create inserts a new pharmacy.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Pharmacy, error) {
	query := fmt.Sprintf(`
		INSERT INTO pharmacies (name, address, facebook_page_id, page_access_token,
			duty_api_token, api_mode, weekday, frequency, radius_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, pharmacyColumns)

	p, err := scanPharmacy(r.pool.QueryRow(ctx, query,
		params.Name, params.Address, params.FacebookPageID, params.PageAccessToken,
		params.DutyAPIToken, params.APIMode, params.Weekday, params.Frequency,
		params.RadiusKm))
	if err != nil {
		return Pharmacy{}, fmt.Errorf("create pharmacy: %w", err)
	}

	return p, nil
}

// Update applies the non-nil fields of params.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Pharmacy, error) {
	query := fmt.Sprintf(`
		UPDATE pharmacies SET
			name = COALESCE($2, name),
			address = COALESCE($3, address),
			facebook_page_id = COALESCE($4, facebook_page_id),
			page_access_token = COALESCE($5, page_access_token),
			duty_api_token = COALESCE($6, duty_api_token),
			api_mode = COALESCE($7, api_mode),
			weekday = COALESCE($8, weekday),
			frequency = COALESCE($9, frequency),
			radius_km = COALESCE($10, radius_km),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, pharmacyColumns)

	p, err := scanPharmacy(r.pool.QueryRow(ctx, query, params.ID,
		params.Name, params.Address, params.FacebookPageID, params.PageAccessToken,
		params.DutyAPIToken, params.APIMode, params.Weekday, params.Frequency,
		params.RadiusKm))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pharmacy{}, apperr.NotFound(pharmacyNotFoundMessage)
		}
		return Pharmacy{}, fmt.Errorf("update pharmacy: %w", err)
	}

	return p, nil
}

// Delete removes a pharmacy and, via cascade, its publications.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pharmacies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pharmacy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(pharmacyNotFoundMessage)
	}
	return nil
}

// UpdateCoordinates backfills geocoded coordinates on a pharmacy that has
// none yet.
func (r *Repo) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	query := `
		UPDATE pharmacies SET latitude = $2, longitude = $3, updated_at = now()
		WHERE id = $1 AND latitude IS NULL`

	if _, err := r.pool.Exec(ctx, query, id, lat, lon); err != nil {
		return fmt.Errorf("update pharmacy coordinates: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPharmacy(row rowScanner) (Pharmacy, error) {
	var p Pharmacy
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &p.FacebookPageID,
		&p.PageAccessToken, &p.DutyAPIToken, &p.APIMode, &p.Weekday, &p.Frequency,
		&p.RadiusKm, &createdAt, &updatedAt,
	)
	if err != nil {
		return Pharmacy{}, err
	}

	p.CreatedAt = createdAt.Format(time.RFC3339)
	p.UpdatedAt = updatedAt.Format(time.RFC3339)
	return p, nil
}
