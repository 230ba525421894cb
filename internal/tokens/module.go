package tokens

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "github.com/amarfts/ph-scheduler/internal/http"
	"github.com/amarfts/ph-scheduler/platform/httpkit"
	"github.com/amarfts/ph-scheduler/platform/validator"
)

type saveTokenRequest struct {
	Token string `json:"token" validate:"required,min=8"`
}

// Module is the tokens module implementing http.Module.
type Module struct {
	vault *Vault
	val   *validator.Validator
}

// NewModule creates the tokens module around an initialized vault.
func NewModule(vault *Vault, val *validator.Validator) *Module {
	return &Module{vault: vault, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tokens"
}

// Vault exposes the vault as a duty-token source for the orchestrator.
func (m *Module) Vault() *Vault {
	return m.vault
}

// RegisterRoutes mounts the token vault routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/duty-token")
	group.PUT("", m.save)
	group.GET("", m.status)
}

func (m *Module) save(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req saveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := m.vault.Save(c.Request.Context(), identity.UserID(), req.Token); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}

func (m *Module) status(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	exists, err := m.vault.HasToken(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"configured": exists})
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
