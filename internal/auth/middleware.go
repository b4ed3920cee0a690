package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
	CtxRoleKey   = "role"
)

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// AuthMiddleware accepts a request only when the token verifies AND a live
// session row exists for it. Logging out deletes the row, which revokes the
// token even though its signature stays valid.
func AuthMiddleware(jwtMgr *JWTManager, sessions *SessionRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperr.Unauthenticated("no token provided"))
			return
		}
		if _, err := jwtMgr.Parse(token); err != nil {
			abort(c, apperr.Unauthenticated("invalid or expired token"))
			return
		}
		actor, err := sessions.Lookup(c.Request.Context(), HashToken(token))
		if err != nil {
			abort(c, err)
			return
		}
		SetActor(c, actor)
		c.Next()
	}
}

// RequireAction gates a route group on the policy table.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Require(Actor(c).Role, action); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

// SetActor attaches an authenticated caller to the request.
func SetActor(c *gin.Context, a user.Actor) {
	c.Set(CtxUserIDKey, a.ID)
	c.Set(CtxEmailKey, a.Email)
	c.Set(CtxRoleKey, string(a.Role))
}

// Actor returns the authenticated caller; zero value outside AuthMiddleware.
func Actor(c *gin.Context) user.Actor {
	return user.Actor{
		ID:    c.GetInt64(CtxUserIDKey),
		Email: c.GetString(CtxEmailKey),
		Role:  user.Role(c.GetString(CtxRoleKey)),
	}
}
