package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tablewise/restaurant-api/internal/api/handler/v1/response"
	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/pkg/jwthelper"
)

const actorKey = "actor"

var (
	errMissingToken  = errors.New("authentication credentials were not provided")
	errMalformedAuth = errors.New("authorization header must be 'Bearer <token>' or 'Token <token>'")
	errInvalidToken  = errors.New("invalid or expired token")
)

type Authenticator struct {
	key []byte
}

func NewAuthenticator(key string) *Authenticator {
	return &Authenticator{
		key: []byte(key),
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || token == "" {
		return "", errMalformedAuth
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", errMalformedAuth
	}

	return strings.TrimSpace(token), nil
}

// VerifyJWT stores the caller as a domain.Actor on the context, or aborts
// with 401.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := bearerToken(ctx.GetHeader("Authorization"))
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(errInvalidToken))
			return
		}

		ctx.Set(actorKey, domain.Actor{
			UserID: claims.UserID,
			Role:   domain.Role(claims.Role),
		})
		ctx.Next()
	}
}

// RequireRoles aborts with 403 unless the caller holds one of roles. It must
// run after VerifyJWT.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := ActorFromContext(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}
		if !actor.HasRole(roles...) {
			response.RenderErr(ctx, response.ErrPermissionDenied(
				fmt.Errorf("role %q may not perform this action", actor.Role)))
			return
		}

		ctx.Next()
	}
}

func ActorFromContext(ctx *gin.Context) (domain.Actor, bool) {
	v, ok := ctx.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
