package http

import (
	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/labstack/echo/v4"
)

// MapAuthRoutes mounts the OAuth flow at the server root. The callback and
// refresh paths keep their trailing slash; the callback one is registered
// with the platform as part of the redirect URI.
func MapAuthRoutes(authGroup *echo.Group, h auth.Handler) {
	authGroup.GET("/", h.Home())
	authGroup.GET("/login", h.Login())
	authGroup.GET("/callback/", h.Callback())
	authGroup.GET("/refresh_token/", h.RefreshTokens())
	authGroup.GET("/tokens", h.ListTokens())
	authGroup.DELETE("/tokens/:open_id", h.RevokeToken())
}
