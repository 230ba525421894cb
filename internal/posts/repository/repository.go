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

const (
	postNotFoundMessage    = "post not found"
	messageNotFoundMessage = "no publication message found"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new posts repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a post with its pharmacy name.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Post, error) {
	query := `
		SELECT p.id, p.pharmacy_id, COALESCE(ph.name, ''), p.image_key,
			p.scheduled_at, p.status, p.facebook_post_id, p.radius_km,
			p.created_at, p.updated_at
		FROM posts p
		LEFT JOIN pharmacies ph ON ph.id = p.pharmacy_id
		WHERE p.id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, apperr.NotFound(postNotFoundMessage)
		}
		return Post{}, fmt.Errorf("get post by id: %w", err)
	}

	return post, nil
}

// List retrieves all posts ordered by target timestamp.
func (r *Repo) List(ctx context.Context) ([]Post, error) {
	query := `
		SELECT p.id, p.pharmacy_id, COALESCE(ph.name, ''), p.image_key,
			p.scheduled_at, p.status, p.facebook_post_id, p.radius_km,
			p.created_at, p.updated_at
		FROM posts p
		LEFT JOIN pharmacies ph ON ph.id = p.pharmacy_id
		ORDER BY p.scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// ExistsActiveOn reports whether a non-cancelled publication exists for the
// pharmacy on the given calendar day.
func (r *Repo) ExistsActiveOn(ctx context.Context, pharmacyID uuid.UUID, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM posts
			WHERE pharmacy_id = $1 AND scheduled_on = $2 AND status <> 'cancelled'
		)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, pharmacyID, day.Format("2006-01-02")).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing post: %w", err)
	}

	return exists, nil
}

// Create records a scheduled publication. The partial unique index on
// (pharmacy_id, scheduled_on) backs the at-most-one-per-day invariant.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Post, error) {
	query := `
		INSERT INTO posts (pharmacy_id, image_key, scheduled_at, scheduled_on,
			facebook_post_id, radius_km)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	post := Post{
		PharmacyID:     params.PharmacyID,
		ImageKey:       params.ImageKey,
		ScheduledAt:    params.ScheduledAt,
		Status:         StatusScheduled,
		FacebookPostID: params.FacebookPostID,
		RadiusKm:       params.RadiusKm,
	}

	var createdAt, updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		params.PharmacyID, params.ImageKey, params.ScheduledAt,
		params.ScheduledAt.Format("2006-01-02"), params.FacebookPostID,
		params.RadiusKm,
	).Scan(&post.ID, &createdAt, &updatedAt)
	if err != nil {
		return Post{}, apperr.Persistence("saving publication failed", err)
	}

	post.CreatedAt = createdAt.Format(time.RFC3339)
	post.UpdatedAt = updatedAt.Format(time.RFC3339)
	return post, nil
}

// UpdateStatus transitions a post to the given persisted state.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE posts SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return apperr.Persistence("updating publication status failed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(postNotFoundMessage)
	}
	return nil
}

// DeleteAll removes every post row.
func (r *Repo) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM posts`); err != nil {
		return apperr.Persistence("deleting posts failed", err)
	}
	return nil
}

// GetMessage returns the shared publication message.
func (r *Repo) GetMessage(ctx context.Context) (string, error) {
	var content string
	err := r.pool.QueryRow(ctx, `SELECT content FROM post_messages WHERE id = 1`).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(messageNotFoundMessage)
		}
		return "", fmt.Errorf("get publication message: %w", err)
	}
	return content, nil
}

// UpsertMessage creates or updates the singleton message row.
func (r *Repo) UpsertMessage(ctx context.Context, content string) (bool, error) {
	query := `
		INSERT INTO post_messages (id, content) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		RETURNING (xmax = 0)`

	var inserted bool
	if err := r.pool.QueryRow(ctx, query, content).Scan(&inserted); err != nil {
		return false, apperr.Persistence("saving publication message failed", err)
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var post Post
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&post.ID, &post.PharmacyID, &post.PharmacyName, &post.ImageKey,
		&post.ScheduledAt, &post.Status, &post.FacebookPostID, &post.RadiusKm,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Post{}, err
	}

	post.CreatedAt = createdAt.Format(time.RFC3339)
	post.UpdatedAt = updatedAt.Format(time.RFC3339)
	return post, nil
}
