package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/logger"
	"github.com/amarfts/ph-scheduler/platform/validator"
)

// loginRequest is the login payload.
type loginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=200"`
}

// loginResponse carries the issued access token.
type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// createUserRequest is the admin payload for registering an operator.
type createUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin operator"`
}

// Module is the auth module implementing http.Module.
type Module struct {
	service *Service
	val     *validator.Validator
}

// NewModule creates the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		service: NewService(pool, cfg, log),
		val:     val,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts login under the stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/login", m.login)

	ctx.Admin.POST("/users", m.createUser)
}

func (m *Module) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	token, user, err := m.service.Login(c.Request.Context(), req.Username, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, loginResponse{
		AccessToken: token,
		Username:    user.Username,
		Role:        user.Role,
	})
}

func (m *Module) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	if req.Role == "" {
		req.Role = httpkit.AdminRole
	}

	user, err := m.service.CreateUser(c.Request.Context(), req.Username, req.Password, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
