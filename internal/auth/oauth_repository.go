package auth

import (
	"context"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// OAuthRepository is the platform's token endpoint: both grant types land on
// the same URL with different form bodies.
type OAuthRepository interface {
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.UserToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.UserToken, error)
}
