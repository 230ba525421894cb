// Package service contains the posts business logic: the scheduling
// orchestrator, the post lifecycle transitions, and the shared message.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/internal/duty"
	"github.com/amarfts/ph-scheduler/internal/geocode"
	pharmrepo "github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/repository"
	"github.com/amarfts/ph-scheduler/internal/storage"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (geocode.Coordinates, error)
}

// ReportResolver finds the minimal sufficient radius and fetches the roster
// report at it.
type ReportResolver interface {
	Resolve(ctx context.Context, p duty.ResolveParams) ([]byte, int, error)
}

// Rasterizer converts a report PDF into PNG pages.
type Rasterizer interface {
	Convert(ctx context.Context, pdf []byte) ([][]byte, error)
}

// Publisher is the remote social platform.
type Publisher interface {
	UploadPhoto(ctx context.Context, pageToken, pageID string, image []byte) (string, error)
	CreatePost(ctx context.Context, pageToken, pageID, message, mediaID string, scheduledAt time.Time) (string, error)
	DeletePost(ctx context.Context, pageToken, postID string) error
}

// TokenSource supplies the operator's stored duty-feed token as a fallback
// when a pharmacy carries none of its own.
type TokenSource interface {
	DutyToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// Service implements the posts use cases.
type Service struct {
	repo       repository.Repository
	pharmacies pharmrepo.Repository
	geocoder   Geocoder
	resolver   ReportResolver
	raster     Rasterizer
	images     storage.ImageStore
	platform   Publisher
	tokens     TokenSource
	bus        events.Bus
	log        *logger.Logger
}

// Deps bundles the service's collaborators.
type Deps struct {
	Repo       repository.Repository
	Pharmacies pharmrepo.Repository
	Geocoder   Geocoder
	Resolver   ReportResolver
	Raster     Rasterizer
	Images     storage.ImageStore
	Platform   Publisher
	Tokens     TokenSource
	Bus        events.Bus
	Log        *logger.Logger
}

// New creates the posts service.
func New(d Deps) *Service {
	return &Service{
		repo:       d.Repo,
		pharmacies: d.Pharmacies,
		geocoder:   d.Geocoder,
		resolver:   d.Resolver,
		raster:     d.Raster,
		images:     d.Images,
		platform:   d.Platform,
		tokens:     d.Tokens,
		bus:        d.Bus,
		log:        d.Log,
	}
}
