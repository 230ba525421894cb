// Package pharmacies provides the pharmacy bounded context module: the
// recurring publication subjects with their recurrence rules, geography, and
// platform credentials.
package pharmacies

import (
	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	"github.com/amarfts/ph-scheduler/internal/pharmacies/handler"
	"github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/pharmacies/service"
	"github.com/amarfts/ph-scheduler/platform/logger"
	"github.com/amarfts/ph-scheduler/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pharmacies bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the pharmacies module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pharmacies"
}

// Repository exposes the pharmacy store to the posts orchestrator.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts pharmacy routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/pharmacies", m.handler.List)
	ctx.Protected.GET("/pharmacies/:id", m.handler.GetByID)

	adminGroup := ctx.Admin.Group("/pharmacies")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
