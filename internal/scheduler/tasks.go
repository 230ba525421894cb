// Package scheduler queues generation runs on Redis via asynq and consumes
// them in the worker binary.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskGeneratePosts runs the scheduling pipeline for every pharmacy.
const TaskGeneratePosts = "posts.generate"

// GeneratePostsPayload carries the inputs of a queued generation run.
type GeneratePostsPayload struct {
	// StartDate is the reference date, formatted 2006-01-02.
	StartDate string `json:"startDate"`
	// UserID identifies the operator the run acts for; their stored duty
	// token is the fallback credential.
	UserID string `json:"userId"`
	// Role is the operator's role at enqueue time.
	Role string `json:"role"`
}

// NewGeneratePostsTask builds the asynq task for a generation run.
func NewGeneratePostsTask(payload GeneratePostsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeneratePosts, data), nil
}

// ParseGeneratePostsPayload decodes a generation run task.
func ParseGeneratePostsPayload(task *asynq.Task) (GeneratePostsPayload, error) {
	var payload GeneratePostsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeneratePostsPayload{}, err
	}
	return payload, nil
}
