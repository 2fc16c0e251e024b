package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/config"
	"github.com/sparklean/sparklean-api/models"
	"github.com/sparklean/sparklean-api/services"
	"github.com/sparklean/sparklean-api/store"
	"github.com/sparklean/sparklean-api/validation"
)

// AuthController handles the identity-provider callback.
type AuthController struct {
	cfg      *config.Config
	store    *store.Store
	identity *services.IdentityService
	logger   zerolog.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(cfg *config.Config, st *store.Store, identity *services.IdentityService, logger zerolog.Logger) *AuthController {
	return &AuthController{cfg: cfg, store: st, identity: identity, logger: logger}
}

// Callback handles GET /api/auth/callback?code= - exchanges the auth code for
// a provider session, provisions the user on first login, sets the session
// cookie and sends the browser home.
func (ac *AuthController) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	session, err := ac.identity.ExchangeCode(ctx, code, ac.redirectURI(c))
	if err != nil {
		apperrors.Respond(c, apperrors.Log(ac.logger, "auth-callback", apperrors.Unauthorized("Failed to exchange authorization code")))
		return
	}

	userInfo, err := ac.identity.GetUserInfo(ctx, session.AccessToken)
	if err != nil {
		apperrors.Respond(c, apperrors.Log(ac.logger, "auth-callback", apperrors.Unauthorized("Failed to fetch user information")))
		return
	}

	if err := ac.provisionUser(c, userInfo); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.SetCookie(ac.cfg.SessionCookieName, session.AccessToken, session.ExpiresIn, "/", "", ac.cfg.IsProduction(), true)
	c.Redirect(http.StatusSeeOther, "/")
}

// redirectURI rebuilds the callback URI the provider originally redirected
// to; it must match what was sent on the authorization request or the token
// exchange is refused. Server requests carry no scheme in the request URL, so
// it comes from the configured public origin, or failing that from the TLS
// state and the proxy's X-Forwarded-Proto header.
func (ac *AuthController) redirectURI(c *gin.Context) string {
	if base := strings.TrimSuffix(ac.cfg.PublicBaseURL, "/"); base != "" {
		return base + c.Request.URL.Path
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path
}

// provisionUser creates the local user row on first login.
func (ac *AuthController) provisionUser(c *gin.Context, userInfo *services.UserInfo) error {
	ctx := c.Request.Context()

	_, err := ac.store.GetUserBySubject(ctx, userInfo.Sub)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		return err
	}

	role := models.RoleCustomer
	if userInfo.Role != "" {
		role = userInfo.Role
	}
	return ac.store.CreateUser(ctx, &models.User{
		Subject: userInfo.Sub,
		Email:   validation.NormalizeEmail(userInfo.Email),
		Role:    role,
	})
}
