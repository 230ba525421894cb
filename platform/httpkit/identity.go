// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminRole is the role required for administrative operations.
const AdminRole = "admin"

// Identity represents the authenticated operator.
// It abstracts identity extraction from the web framework so services can
// receive the acting user as an explicit value instead of ambient state.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// Role returns the user's role.
	Role() string
	// IsAdmin reports whether the user holds the admin role.
	IsAdmin() bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID    { return i.userID }
func (i *identity) Role() string         { return i.role }
func (i *identity) IsAdmin() bool        { return i.role == AdminRole }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	role := c.GetString(ContextRoleKey)
	return &identity{
		userID:        uid,
		role:          role,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and
// returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}

// NewIdentity builds an authenticated identity outside the HTTP layer, for
// background jobs acting on behalf of a stored user.
func NewIdentity(userID uuid.UUID, role string) Identity {
	return &identity{userID: userID, role: role, authenticated: true}
}

type identityCtxKey struct{}

// WithIdentity stores the identity in the context for downstream services.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom retrieves the identity previously stored with WithIdentity.
// Returns an unauthenticated identity when none is present.
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityCtxKey{}).(Identity); ok {
		return id
	}
	return &identity{}
}
