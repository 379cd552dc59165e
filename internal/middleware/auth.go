package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/model"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const (
	// TokenCookie is the cookie carrying the access token.
	TokenCookie = "token"

	ContextUser  = "auth_user"
	ContextToken = "auth_token"
)

// Authenticator resolves a raw token into the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AuthUser, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate reads the token from the cookie, falling back to a Bearer
// header, and stores the caller in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			handler.RespondError(c, apperrors.Unauthorized("Authentication required"))
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireRoles rejects callers whose type is not one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			handler.RespondError(c, apperrors.Unauthorized("Authentication required"))
			return
		}
		for _, role := range roles {
			if user.Type == role {
				c.Next()
				return
			}
		}
		handler.RespondError(c, apperrors.Forbidden(""))
	}
}

// TokenFromRequest returns the token cookie or the Bearer credential.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the caller stored by Authenticate.
func CurrentUser(c *gin.Context) (*model.AuthUser, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.AuthUser)
	return user, ok && user != nil
}

// MustCurrentUser is CurrentUser for routes behind Authenticate. It writes a
// 401 and returns nil when no caller is present.
func MustCurrentUser(c *gin.Context) *model.AuthUser {
	user, ok := CurrentUser(c)
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized("Authentication required"))
		return nil
	}
	return user
}

// ActorID is used by the event tracker to attribute events.
func ActorID(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok {
		return user.ID.String()
	}
	return ""
}
