// Package transport contains the posts module's request and response DTOs.
package transport

import (
	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/internal/events"
)

// GenerateRequest starts a generation run from the given reference date.
type GenerateRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
}

// GenerateResponse carries the full list of per-pharmacy outcomes.
type GenerateResponse struct {
	Results []events.RunOutcome `json:"results"`
}

// PostResponse is the API representation of a scheduled publication.
// Status is the derived view: "archived" replaces "scheduled" once the
// target timestamp has passed.
type PostResponse struct {
	ID             uuid.UUID `json:"id"`
	PharmacyID     uuid.UUID `json:"pharmacyId"`
	PharmacyName   string    `json:"pharmacyName"`
	ImageKey       string    `json:"imageKey"`
	ScheduledAt    string    `json:"scheduledAt"`
	Status         string    `json:"status"`
	FacebookPostID string    `json:"facebookPostId,omitempty"`
	RadiusKm       int       `json:"radiusKm"`
	CreatedAt      string    `json:"createdAt"`
}

// ListPostsResponse wraps the post collection.
type ListPostsResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int            `json:"total"`
}

// MessageRequest sets the shared publication message.
type MessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// MessageResponse returns the shared publication message.
type MessageResponse struct {
	Message string `json:"message"`
}

// UpsertMessageResponse reports whether the message was created or updated.
type UpsertMessageResponse struct {
	Action string `json:"action"`
}
