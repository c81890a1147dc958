package repository

import (
	"context"
	"database/sql"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type tokenPGRepo struct {
	db *sqlx.DB
}

func NewTokenPGRepo(db *sqlx.DB) auth.Repository {
	return &tokenPGRepo{
		db: db,
	}
}

func (r *tokenPGRepo) Get(ctx context.Context, openID string) (*models.UserToken, error) {
	token := &models.UserToken{}
	if err := r.db.QueryRowxContext(
		ctx,
		getTokenQuery,
		openID,
	).StructScan(token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(auth.ErrTokenNotFound, "open_id=%s", openID)
		}
		return nil, errors.Wrap(err, "failed to get token")
	}
	return token, nil
}

func (r *tokenPGRepo) Upsert(ctx context.Context, token *models.UserToken) error {
	if token == nil || token.OpenID == "" {
		return errors.New("token must carry an open_id")
	}
	stored := &models.UserToken{}
	if err := r.db.QueryRowxContext(
		ctx,
		upsertTokenQuery,
		&token.OpenID,
		&token.AccessToken,
		&token.RefreshToken,
		&token.ExpiresAt,
		&token.RefreshExpiresAt,
		&token.Scope,
		&token.TokenType,
	).StructScan(stored); err != nil {
		return errors.Wrap(err, "failed to upsert token")
	}
	token.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *tokenPGRepo) Delete(ctx context.Context, openID string) error {
	res, err := r.db.ExecContext(ctx, deleteTokenQuery, openID)
	if err != nil {
		return errors.Wrap(err, "failed to delete token")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if affected == 0 {
		return errors.Wrapf(auth.ErrTokenNotFound, "open_id=%s", openID)
	}
	return nil
}

func (r *tokenPGRepo) List(ctx context.Context) ([]*models.UserToken, error) {
	rows, err := r.db.QueryxContext(ctx, listTokensQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tokens")
	}
	defer rows.Close()

	var tokens []*models.UserToken
	for rows.Next() {
		token := &models.UserToken{}
		if err := rows.StructScan(token); err != nil {
			return nil, errors.Wrap(err, "failed to scan token row")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate token rows")
	}
	return tokens, nil
}
