package scheduler

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/amarfts/ph-scheduler/internal/posts/service"
	"github.com/amarfts/ph-scheduler/internal/posts/transport"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Worker consumes generation run tasks. Concurrency is fixed at 1: the
// pipeline is strictly sequential and the system runs a single scheduler
// instance.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	posts  *service.Service
	log    *logger.Logger
}

// NewWorker creates the asynq server and registers the task handlers.
func NewWorker(cfg config.SchedulerConfig, posts *service.Service, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		posts:  posts,
		log:    log,
	}

	mux.HandleFunc(TaskGeneratePosts, w.handleGeneratePosts)

	return w, nil
}

// Run starts the worker loop and blocks until shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleGeneratePosts(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeneratePostsPayload(task)
	if err != nil {
		return err
	}

	if userID, parseErr := uuid.Parse(payload.UserID); parseErr == nil {
		ctx = httpkit.WithIdentity(ctx, httpkit.NewIdentity(userID, payload.Role))
	}

	w.log.Info("generation run started", "start_date", payload.StartDate)

	result, err := w.posts.Generate(ctx, transport.GenerateRequest{StartDate: payload.StartDate})
	if err != nil {
		w.log.Error("generation run failed", "start_date", payload.StartDate, "error", err)
		return err
	}

	w.log.Info("generation run finished",
		"start_date", payload.StartDate, "pharmacies", len(result.Results))
	return nil
}
