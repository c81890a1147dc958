package auth

import (
	"context"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// RefreshReport summarizes a bulk refresh sweep over the token store.
type RefreshReport struct {
	Refreshed      []string          `json:"refreshed"`
	Skipped        []string          `json:"skipped"`
	ReauthRequired []string          `json:"reauth_required"`
	Failed         map[string]string `json:"failed"`
}

type UseCase interface {
	// AuthorizeURL starts a PKCE flow and returns the URL to send the
	// creator's browser to.
	AuthorizeURL(ctx context.Context) (string, error)
	// CompleteAuthorization consumes the callback's code and state, trades
	// them for tokens and persists the result.
	CompleteAuthorization(ctx context.Context, code, state string) (*models.UserToken, error)
	// GetValidToken returns a usable access token, refreshing behind the
	// scenes when the stored one is expired or about to expire.
	GetValidToken(ctx context.Context, openID string) (*models.UserToken, error)
	// RefreshToken forces a refresh grant regardless of remaining lifetime.
	RefreshToken(ctx context.Context, openID string) (*models.UserToken, error)
	RefreshExpiring(ctx context.Context) (*RefreshReport, error)
	ListTokens(ctx context.Context) ([]*models.UserToken, error)
	// RevokeToken drops a creator's stored credentials. The grant itself is
	// not invalidated upstream; the creator simply disappears from this
	// deployment until they authorize again.
	RevokeToken(ctx context.Context, openID string) error
}
