package server

import (
	"net/http"

	authHttp "github.com/creatorstack/tiktok-uploader/internal/auth/delivery/http"
	authRepository "github.com/creatorstack/tiktok-uploader/internal/auth/repository"
	authUsecase "github.com/creatorstack/tiktok-uploader/internal/auth/usecase"
	"github.com/creatorstack/tiktok-uploader/internal/middleware"
	"github.com/creatorstack/tiktok-uploader/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	tokenRepo, err := authRepository.NewTokenRepository(s.cfg, s.db)
	if err != nil {
		return err
	}
	oauthRepo := authRepository.NewOAuthRepo(s.cfg)

	authUC := authUsecase.NewAuthUseCase(s.cfg, tokenRepo, oauthRepo, s.logger)

	authHandlers := authHttp.NewAuthHandler(s.cfg, authUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)
	e.Use(mw.RequestLoggerMiddleware)

	authGroup := e.Group("")

	authHttp.MapAuthRoutes(authGroup, authHandlers)
	e.GET("/health", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
