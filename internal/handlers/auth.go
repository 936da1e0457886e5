package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/config"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
)

const (
	userIDKey    = "user_id"
	devUserIDHdr = "X-User-ID"
)

// TokenVerifier checks a bearer token and returns its claims.
// *casdoorsdk.Client satisfies it.
type TokenVerifier interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// NewCasdoorVerifier returns nil when casdoor is not configured.
func NewCasdoorVerifier(cfg config.CasdoorConfig) TokenVerifier {
	if !cfg.Enabled() {
		return nil
	}
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
}

// AuthMiddleware identifies the caller and stores the id under "user_id".
// Without a verifier the id is taken from the X-User-ID header, which is only
// meant for local development.
func AuthMiddleware(verifier TokenVerifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			if userID := strings.TrimSpace(c.GetHeader(devUserIDHdr)); userID != "" {
				c.Set(userIDKey, userID)
			}
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims, err := verifier.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Rejected access token", "error", err, "path", c.Request.URL.Path)
			abortUnauthorized(c, "Invalid access token")
			return
		}

		userID := claims.User.Id
		if userID == "" {
			userID = claims.User.Owner + "/" + claims.User.Name
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: message,
		Code:    "UNAUTHORIZED",
	})
}
