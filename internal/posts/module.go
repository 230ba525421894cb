// Package posts provides the publications bounded context module: the
// scheduling orchestrator, the post lifecycle, and the shared message.
package posts

import (
	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	pharmrepo "github.com/amarfts/ph-scheduler/internal/pharmacies/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/handler"
	"github.com/amarfts/ph-scheduler/internal/posts/repository"
	"github.com/amarfts/ph-scheduler/internal/posts/service"
	"github.com/amarfts/ph-scheduler/internal/storage"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/logger"
	"github.com/amarfts/ph-scheduler/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the posts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// Deps bundles the external collaborators the posts module needs.
type Deps struct {
	Pool       *pgxpool.Pool
	Pharmacies pharmrepo.Repository
	Geocoder   service.Geocoder
	Resolver   service.ReportResolver
	Raster     service.Rasterizer
	Images     storage.ImageStore
	Platform   service.Publisher
	Tokens     service.TokenSource
	Bus        events.Bus
	Validator  *validator.Validator
	Log        *logger.Logger
}

// NewModule creates and initializes the posts module.
func NewModule(d Deps) *Module {
	repo := repository.New(d.Pool)
	svc := service.New(service.Deps{
		Repo:       repo,
		Pharmacies: d.Pharmacies,
		Geocoder:   d.Geocoder,
		Resolver:   d.Resolver,
		Raster:     d.Raster,
		Images:     d.Images,
		Platform:   d.Platform,
		Tokens:     d.Tokens,
		Bus:        d.Bus,
		Log:        d.Log,
	})
	h := handler.New(svc, d.Validator)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "posts"
}

// Service exposes the posts service to the worker binary.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts publication routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/posts")
	adminGroup.GET("", m.handler.List)
	adminGroup.POST("/generate", m.handler.Generate)
	adminGroup.POST("/:id/publish", m.handler.ForcePublish)
	adminGroup.DELETE("/:id", m.handler.Cancel)
	adminGroup.DELETE("", m.handler.DeleteAll)
	adminGroup.GET("/message", m.handler.GetMessage)
	adminGroup.PUT("/message", m.handler.UpdateMessage)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
