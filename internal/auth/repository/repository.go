package repository

import (
	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	defaultTokenFile = "user_tokens.json"
)

// NewTokenRepository picks the configured token store backend. The JSON file
// store is the default; postgres requires an open connection.
func NewTokenRepository(cfg *config.Config, db *sqlx.DB) (auth.Repository, error) {
	switch cfg.TokenStore.Backend {
	case BackendPostgres:
		if db == nil {
			return nil, errors.New("postgres token store selected but no database connection given")
		}
		return NewTokenPGRepo(db), nil
	case BackendFile, "":
		file := cfg.TokenStore.File
		if file == "" {
			file = defaultTokenFile
		}
		return NewTokenJSONRepo(file), nil
	default:
		return nil, errors.Errorf("unknown token store backend %q", cfg.TokenStore.Backend)
	}
}
