// Package service contains the pharmacies business logic.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/pharmacies/transport"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Service implements pharmacy use cases.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new pharmacies service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create registers a new pharmacy.
func (s *Service) Create(ctx context.Context, req transport.CreatePharmacyRequest) (transport.PharmacyResponse, error) {
	params := repository.CreateParams{
		Name:            req.Name,
		Address:         req.Address,
		FacebookPageID:  req.FacebookPageID,
		PageAccessToken: req.PageAccessToken,
		DutyAPIToken:    req.DutyAPIToken,
		APIMode:         req.APIMode,
		Weekday:         req.Weekday,
		Frequency:       req.Frequency,
		RadiusKm:        req.RadiusKm,
	}
	if params.APIMode == "" {
		params.APIMode = repository.ModePublic
	}
	if params.Frequency == "" {
		params.Frequency = repository.FrequencyWeekly
	}
	if params.RadiusKm == 0 {
		params.RadiusKm = 1
	}

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.PharmacyResponse{}, err
	}

	s.log.Info("pharmacy created", "pharmacy_id", p.ID, "name", p.Name)
	return toResponse(p), nil
}

// Update partially updates a pharmacy.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdatePharmacyRequest) (transport.PharmacyResponse, error) {
	p, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:              id,
		Name:            req.Name,
		Address:         req.Address,
		FacebookPageID:  req.FacebookPageID,
		PageAccessToken: req.PageAccessToken,
		DutyAPIToken:    req.DutyAPIToken,
		APIMode:         req.APIMode,
		Weekday:         req.Weekday,
		Frequency:       req.Frequency,
		RadiusKm:        req.RadiusKm,
	})
	if err != nil {
		return transport.PharmacyResponse{}, err
	}

	return toResponse(p), nil
}

// GetByID retrieves one pharmacy.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.PharmacyResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PharmacyResponse{}, err
	}
	return toResponse(p), nil
}

// List retrieves all pharmacies.
func (s *Service) List(ctx context.Context) (transport.ListPharmaciesResponse, error) {
	pharmacies, err := s.repo.List(ctx)
	if err != nil {
		return transport.ListPharmaciesResponse{}, err
	}

	out := make([]transport.PharmacyResponse, 0, len(pharmacies))
	for _, p := range pharmacies {
		out = append(out, toResponse(p))
	}

	return transport.ListPharmaciesResponse{Pharmacies: out, Total: len(out)}, nil
}

// Delete removes a pharmacy.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("pharmacy deleted", "pharmacy_id", id)
	return nil
}

func toResponse(p repository.Pharmacy) transport.PharmacyResponse {
	return transport.PharmacyResponse{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		FacebookPageID: p.FacebookPageID,
		HasPageToken:   p.PageAccessToken != "",
		HasDutyToken:   p.DutyAPIToken != "",
		APIMode:        p.APIMode,
		Weekday:        p.Weekday,
		Frequency:      p.Frequency,
		RadiusKm:       p.RadiusKm,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
