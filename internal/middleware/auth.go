package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/rs/zerolog/log"
)

const callerKey = "caller"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*access.Caller, error)
}

// CallerFrom returns the authenticated caller, or nil for guests.
func CallerFrom(c *gin.Context) *access.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*access.Caller)
	return caller
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// OptionalAuth attaches a caller when a valid token is present. A missing or
// invalid token leaves the request anonymous.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			caller, err := auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.FullPath()).Msg("OptionalAuth: Treating request as guest")
			} else {
				c.Set(callerKey, caller)
			}
		}
		c.Next()
	}
}

func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "token not provided"})
			return
		}
		caller, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(apperror.HTTPStatus(err), dto.ErrorResponse{Message: apperror.PublicMessage(err)})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "not authenticated"})
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "insufficient permissions"})
	}
}
