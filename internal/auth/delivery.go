package auth

import "github.com/labstack/echo/v4"

type Handler interface {
	Home() echo.HandlerFunc
	Login() echo.HandlerFunc
	Callback() echo.HandlerFunc
	RefreshTokens() echo.HandlerFunc
	ListTokens() echo.HandlerFunc
	RevokeToken() echo.HandlerFunc
}
