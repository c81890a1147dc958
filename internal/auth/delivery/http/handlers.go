package http

import (
	"net/http"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type authHandler struct {
	cfg    *config.Config
	authUc auth.UseCase
	logger logger.Logger
}

func NewAuthHandler(cfg *config.Config, authUc auth.UseCase, logger logger.Logger) auth.Handler {
	return &authHandler{
		cfg:    cfg,
		authUc: authUc,
		logger: logger,
	}
}

func (h *authHandler) Home() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.HTML(http.StatusOK, `<html><body><a href="/login">Log in with TikTok</a></body></html>`)
	}
}

func (h *authHandler) Login() echo.HandlerFunc {
	return func(c echo.Context) error {
		authorizeURL, err := h.authUc.AuthorizeURL(c.Request().Context())
		if err != nil {
			h.logger.Errorf("Login - AuthorizeURL error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to start authorization"})
		}
		return c.Redirect(http.StatusFound, authorizeURL)
	}
}

func (h *authHandler) Callback() echo.HandlerFunc {
	return func(c echo.Context) error {
		if errParam := c.QueryParam("error"); errParam != "" {
			h.logger.Warnf("Callback - authorization denied: %s (%s)", errParam, c.QueryParam("error_description"))
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":             errParam,
				"error_description": c.QueryParam("error_description"),
			})
		}

		code := c.QueryParam("code")
		state := c.QueryParam("state")
		if code == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing authorization code"})
		}

		token, err := h.authUc.CompleteAuthorization(c.Request().Context(), code, state)
		if err != nil {
			h.logger.Errorf("Callback - CompleteAuthorization error: %v", err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		h.logger.Infof("Callback - stored token for open_id=%s", token.OpenID)
		return c.String(http.StatusOK, "Retrieved Scoped Access Token Successfully.")
	}
}

func (h *authHandler) RefreshTokens() echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := h.authUc.RefreshExpiring(c.Request().Context())
		if err != nil {
			h.logger.Errorf("RefreshTokens - RefreshExpiring error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, report)
	}
}

// tokenView is the store listing with credential material stripped.
type tokenView struct {
	OpenID           string    `json:"open_id"`
	Scope            string    `json:"scope"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Valid            bool      `json:"valid"`
}

func (h *authHandler) RevokeToken() echo.HandlerFunc {
	return func(c echo.Context) error {
		openID := c.Param("open_id")
		if openID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing open_id"})
		}
		if err := h.authUc.RevokeToken(c.Request().Context(), openID); err != nil {
			if errors.Is(err, auth.ErrTokenNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "no stored token for open_id"})
			}
			h.logger.Errorf("RevokeToken - RevokeToken error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *authHandler) ListTokens() echo.HandlerFunc {
	return func(c echo.Context) error {
		tokens, err := h.authUc.ListTokens(c.Request().Context())
		if err != nil {
			h.logger.Errorf("ListTokens - ListTokens error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		margin := h.cfg.Uploader.TokenExpiryMarginDuration()
		views := make([]tokenView, 0, len(tokens))
		for _, t := range tokens {
			views = append(views, tokenView{
				OpenID:           t.OpenID,
				Scope:            t.Scope,
				ExpiresAt:        t.ExpiresAt,
				RefreshExpiresAt: t.RefreshExpiresAt,
				UpdatedAt:        t.UpdatedAt,
				Valid:            t.Valid(margin),
			})
		}
		return c.JSON(http.StatusOK, views)
	}
}
