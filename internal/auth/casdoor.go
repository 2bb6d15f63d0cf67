package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/formacode/course-service/internal/config"
	"github.com/formacode/course-service/internal/models"
)

const principalKey = "principal"

// Authenticator resolves bearer tokens into Principals via Casdoor.
type Authenticator struct {
	client *casdoorsdk.Client
	logger *slog.Logger
}

func NewAuthenticator(cfg config.CasdoorConfig, logger *slog.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{client: client, logger: logger}
}

// Middleware parses the Authorization header and stores the resolved
// Principal in the Gin context. Requests without a valid token are rejected.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			a.logger.Warn("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, principalFromClaims(claims))
		c.Next()
	}
}

// RequireAuthor gates the authoring endpoints: import, re-import, delete.
func RequireAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		if !principal.CanAuthor() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "authoring requires instructor or admin role"})
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the Principal stored by Middleware.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

func principalFromClaims(claims *casdoorsdk.Claims) models.Principal {
	role := models.RoleStudent
	switch {
	case claims.User.IsAdmin:
		role = models.RoleAdmin
	case claims.User.Tag == "instructor":
		role = models.RoleInstructor
	}

	return models.Principal{
		ID:   claims.User.Id,
		Name: claims.User.Name,
		Role: role,
	}
}
