package auth

import (
	"context"
	"errors"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// ErrTokenNotFound is returned by every Repository backend when no token is
// stored for the requested open_id.
var ErrTokenNotFound = errors.New("token not found")

// Repository persists one OAuth credential set per creator open_id.
type Repository interface {
	Get(ctx context.Context, openID string) (*models.UserToken, error)
	Upsert(ctx context.Context, token *models.UserToken) error
	List(ctx context.Context) ([]*models.UserToken, error)
	Delete(ctx context.Context, openID string) error
}
