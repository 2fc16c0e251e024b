package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/config"
)

// CustomClaims carries the custom claims the identity provider puts on a
// session token.
type CustomClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate does nothing, but is required to satisfy the
// validator.CustomClaims interface.
func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Identity is the authenticated caller derived from a session token.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// newSessionValidator builds a JWT validator against the identity provider's
// JWKS endpoint.
func newSessionValidator(cfg *config.Config) *validator.Validator {
	issuerURL, err := url.Parse("https://" + cfg.AuthDomain + "/")
	if err != nil {
		log.Fatalf("Failed to parse the issuer url: %v", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.AuthAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	return jwtValidator
}

// sessionToken pulls the session token from the session cookie, falling back
// to the Authorization header for non-browser clients.
func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// sessionGate resolves the request's session token into an identity stored in
// the gin context, invoking reject when there is none. The gate holds no
// state of its own; every request is re-evaluated.
func sessionGate(cfg *config.Config, reject func(c *gin.Context)) gin.HandlerFunc {
	jwtValidator := newSessionValidator(cfg)

	return func(c *gin.Context) {
		token := sessionToken(c, cfg.SessionCookieName)
		if token == "" {
			reject(c)
			return
		}

		claims, err := jwtValidator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			reject(c)
			return
		}

		validated := claims.(*validator.ValidatedClaims)
		identity := Identity{Subject: validated.RegisteredClaims.Subject}
		if custom, ok := validated.CustomClaims.(*CustomClaims); ok {
			identity.Email = custom.Email
			identity.Role = custom.Role
		}

		c.Set("user_id", identity.Subject)
		c.Set("identity", identity)

		c.Next()
	}
}

// EnsureSession guards API routes: no valid session yields a 401 JSON error.
func EnsureSession(cfg *config.Config) gin.HandlerFunc {
	return sessionGate(cfg, func(c *gin.Context) {
		apperrors.Respond(c, apperrors.Unauthorized("Unauthorized"))
		c.Abort()
	})
}

// EnsureSessionPage guards page-style routes: no valid session redirects to
// the login page.
func EnsureSessionPage(cfg *config.Config) gin.HandlerFunc {
	return sessionGate(cfg, func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	})
}

// RequireRole rejects requests whose identity does not carry the given role.
// It must run after a session gate.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentity(c)
		if err != nil {
			apperrors.Respond(c, apperrors.Unauthorized("Unauthorized"))
			c.Abort()
			return
		}
		if identity.Role != role {
			apperrors.Respond(c, apperrors.Forbidden("Insufficient permissions to access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity extracts the authenticated identity from the gin context.
func GetIdentity(c *gin.Context) (Identity, error) {
	v, exists := c.Get("identity")
	if !exists {
		return Identity{}, apperrors.Unauthorized("Identity not found in context")
	}
	identity, ok := v.(Identity)
	if !ok {
		return Identity{}, apperrors.Unauthorized("Identity is not in the expected format")
	}
	return identity, nil
}

// GetUserID extracts the identity-provider subject from the gin context.
func GetUserID(c *gin.Context) (string, error) {
	identity, err := GetIdentity(c)
	if err != nil {
		return "", err
	}
	return identity.Subject, nil
}
