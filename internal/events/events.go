// Package events defines the domain events exchanged between modules.
package events

import (
	"github.com/google/uuid"

	"github.com/amarfts/ph-scheduler/platform/events"
)

// Outcome statuses of a generation run, per pharmacy.
const (
	OutcomeScheduled = "scheduled"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// RunOutcome is one pharmacy's result in a generation run.
type RunOutcome struct {
	Pharmacy string `json:"pharmacy"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	PostID   string `json:"postId,omitempty"`
	RadiusKm int    `json:"radiusKm,omitempty"`
}

// GenerationRunCompleted is published after a generation run finishes,
// regardless of per-pharmacy failures.
type GenerationRunCompleted struct {
	events.BaseEvent
	StartDate string       `json:"startDate"`
	Outcomes  []RunOutcome `json:"outcomes"`
}

// EventName returns the event identifier.
func (GenerationRunCompleted) EventName() string { return "posts.generation_run_completed" }

// PostCancelled is published after a scheduled publication is cancelled.
type PostCancelled struct {
	events.BaseEvent
	PostID   uuid.UUID `json:"postId"`
	Pharmacy string    `json:"pharmacy"`
}

// EventName returns the event identifier.
func (PostCancelled) EventName() string { return "posts.post_cancelled" }
