package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/auth"
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, fromDomainError(err, "authentication failed"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// settingsPasscodeGuard rejects settings writes without a matching X-Settings-Passcode.
func settingsPasscodeGuard(check func(passcode string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := check(c.GetHeader("X-Settings-Passcode")); err != nil {
			abortWithError(c, fromDomainError(err, ""))
			return
		}
		c.Next()
	}
}
