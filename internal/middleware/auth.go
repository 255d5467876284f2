package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitso-en/photovault/internal/auth"
	"github.com/sitso-en/photovault/internal/domain"
	"github.com/sitso-en/photovault/internal/domain/user"
	"github.com/sitso-en/photovault/internal/policy"
	"github.com/sitso-en/photovault/internal/response"
)

const actorKey = "actor"

// AuthMiddleware requires a valid bearer token and stores the resolved
// actor on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtManager)
		if !ok {
			response.Unauthorized(c, "missing or invalid token")
			c.Abort()
			return
		}
		c.Set(actorKey, policy.NewActor(claims.UserID, user.Role(claims.Role)))
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the actor when a valid bearer token
// is present and falls back to the anonymous actor otherwise. Read
// paths that serve public content use it.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwtManager); ok {
			c.Set(actorKey, policy.NewActor(claims.UserID, user.Role(claims.Role)))
		} else {
			c.Set(actorKey, policy.Anonymous())
		}
		c.Next()
	}
}

// RequireRole rejects actors without the given role. Runs after
// AuthMiddleware.
func RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Authenticated || actor.Role != role {
			response.Error(c, domain.NewForbiddenError("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the actor resolved for this request, or the
// anonymous actor if none was set.
func GetActor(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

func bearerClaims(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := jwtManager.VerifyAccess(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
