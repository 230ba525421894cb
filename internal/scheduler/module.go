package scheduler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/validator"
)

type enqueueRunRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	// RunAt optionally defers the run, RFC 3339. Empty means immediately.
	RunAt string `json:"runAt" validate:"omitempty"`
}

// Module exposes queued generation runs over HTTP. It is only registered
// when Redis is configured.
type Module struct {
	client *Client
	val    *validator.Validator
}

// NewModule creates the scheduler module.
func NewModule(client *Client, val *validator.Validator) *Module {
	return &Module{client: client, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scheduler"
}

// RegisterRoutes mounts the run queueing route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/runs", m.enqueue)
}

func (m *Module) enqueue(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req enqueueRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	var runAt time.Time
	if req.RunAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RunAt)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "runAt must be RFC 3339", nil)
			return
		}
		runAt = parsed
	}

	payload := GeneratePostsPayload{
		StartDate: req.StartDate,
		UserID:    identity.UserID().String(),
		Role:      identity.Role(),
	}
	if err := m.client.EnqueueGeneration(c.Request.Context(), payload, runAt); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "enqueueing run failed", nil)
		return
	}

	httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
