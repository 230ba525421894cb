package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	domevents "github.com/amarfts/ph-scheduler/internal/events"
	"github.com/amarfts/ph-scheduler/internal/posts/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/transport"
	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/events"
)

// StatusArchived is the derived read-time state: still scheduled, but the
// target timestamp has passed. It is never persisted.
const StatusArchived = "archived"

// List returns all publications with the derived status view.
func (s *Service) List(ctx context.Context) (transport.ListPostsResponse, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return transport.ListPostsResponse{}, err
	}

	now := time.Now()
	out := make([]transport.PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, toResponse(post, now))
	}

	return transport.ListPostsResponse{Posts: out, Total: len(out)}, nil
}

// ForcePublish posts a scheduled publication immediately, regardless of its
// target timestamp. Only scheduled publications can be force-published;
// published and cancelled are terminal.
func (s *Service) ForcePublish(ctx context.Context, id uuid.UUID) (transport.PostResponse, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PostResponse{}, err
	}
	if post.Status != repository.StatusScheduled {
		return transport.PostResponse{}, apperr.Conflict("only scheduled posts can be published")
	}

	pharmacy, err := s.pharmacies.GetByID(ctx, post.PharmacyID)
	if err != nil {
		return transport.PostResponse{}, err
	}
	if pharmacy.FacebookPageID == "" {
		return transport.PostResponse{}, apperr.Validation("missing remote page id")
	}
	if pharmacy.PageAccessToken == "" {
		return transport.PostResponse{}, apperr.Validation("missing page access token")
	}

	message, err := s.repo.GetMessage(ctx)
	if err != nil {
		return transport.PostResponse{}, err
	}

	image, err := s.images.Get(ctx, post.ImageKey)
	if err != nil {
		return transport.PostResponse{}, err
	}

	mediaID, err := s.platform.UploadPhoto(ctx, pharmacy.PageAccessToken, pharmacy.FacebookPageID, image)
	if err != nil {
		return transport.PostResponse{}, err
	}
	if _, err := s.platform.CreatePost(ctx,
		pharmacy.PageAccessToken, pharmacy.FacebookPageID, message, mediaID, time.Time{}); err != nil {
		return transport.PostResponse{}, err
	}

	if err := s.repo.UpdateStatus(ctx, id, repository.StatusPublished); err != nil {
		// The immediate post went out; the store write is the only failed
		// side effect.
		s.log.Error("marking post published failed", "post_id", id, "error", err)
		return transport.PostResponse{}, err
	}

	s.log.Info("post force-published", "post_id", id, "pharmacy", pharmacy.Name)

	post.Status = repository.StatusPublished
	return toResponse(post, time.Now()), nil
}

// Cancel cancels a scheduled publication. When a remote post exists it is
// deleted first; remote deletion failure aborts the cancellation and leaves
// the state unchanged. Cancellation is only permitted from scheduled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Status != repository.StatusScheduled {
		return apperr.Conflict("only scheduled posts can be cancelled")
	}

	if post.FacebookPostID != "" {
		pharmacy, err := s.pharmacies.GetByID(ctx, post.PharmacyID)
		if err != nil {
			return err
		}
		if err := s.platform.DeletePost(ctx, pharmacy.PageAccessToken, post.FacebookPostID); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, repository.StatusCancelled); err != nil {
		return err
	}

	s.log.Info("post cancelled", "post_id", id, "pharmacy", post.PharmacyName)
	s.bus.Publish(ctx, domevents.PostCancelled{
		BaseEvent: events.NewBaseEvent(),
		PostID:    id,
		Pharmacy:  post.PharmacyName,
	})

	return nil
}

// DeleteAll removes every publication record.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.log.Info("all posts deleted")
	return nil
}

// toResponse maps a post to its API view, deriving the archived status from
// {state, target timestamp} against now.
func toResponse(post repository.Post, now time.Time) transport.PostResponse {
	status := post.Status
	if status == repository.StatusScheduled && !post.ScheduledAt.After(now) {
		status = StatusArchived
	}

	return transport.PostResponse{
		ID:             post.ID,
		PharmacyID:     post.PharmacyID,
		PharmacyName:   post.PharmacyName,
		ImageKey:       post.ImageKey,
		ScheduledAt:    post.ScheduledAt.Format(time.RFC3339),
		Status:         status,
		FacebookPostID: post.FacebookPostID,
		RadiusKm:       post.RadiusKm,
		CreatedAt:      post.CreatedAt,
	}
}
