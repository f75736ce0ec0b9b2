package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

const (
	ContextUserID    = "userID"
	ContextClientID  = "clientID"
	ContextCompanyID = "companyID"
	ContextUserRole  = "userRole"
)

// TokenParser is satisfied by *auth.Issuer.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

func bearerClaims(c *gin.Context, parser TokenParser) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "missing authorization header")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "expected a bearer token")
		return nil, false
	}

	claims, err := parser.Parse(parts[1])
	if err != nil {
		httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
		return nil, false
	}
	return claims, true
}

// StaffAuth admits access tokens issued to back-office users.
func StaffAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, parser)
		if !ok {
			return
		}
		if claims.Kind != auth.KindStaff {
			httperr.Abort(c, http.StatusForbidden, "wrong_token_kind", "staff token required")
			return
		}

		c.Set(ContextUserID, claims.SubjectID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// PortalAuth admits access tokens issued to clients.
func PortalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, parser)
		if !ok {
			return
		}
		if claims.Kind != auth.KindClient {
			httperr.Abort(c, http.StatusForbidden, "wrong_token_kind", "client token required")
			return
		}

		c.Set(ContextClientID, claims.SubjectID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Next()
	}
}

// RequireRole must run after StaffAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Abort(c, http.StatusForbidden, "forbidden", "insufficient role")
	}
}
