package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFixture(openID string) *models.UserToken {
	return &models.UserToken{
		OpenID:           openID,
		AccessToken:      "act." + openID,
		RefreshToken:     "rft." + openID,
		ExpiresAt:        time.Now().Add(24 * time.Hour).UTC(),
		RefreshExpiresAt: time.Now().Add(365 * 24 * time.Hour).UTC(),
		Scope:            "video.publish",
		TokenType:        "Bearer",
	}
}

func TestTokenJSONRepoRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "user_tokens.json")
	repo := NewTokenJSONRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, tokenFixture("open-b")))
	require.NoError(t, repo.Upsert(ctx, tokenFixture("open-a")))

	got, err := repo.Get(ctx, "open-a")
	require.NoError(t, err)
	assert.Equal(t, "act.open-a", got.AccessToken)
	assert.False(t, got.UpdatedAt.IsZero(), "upsert stamps the record")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "open-a", list[0].OpenID, "list is sorted by open_id")
	assert.Equal(t, "open-b", list[1].OpenID)
}

func TestTokenJSONRepoUpsertReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_tokens.json")
	repo := NewTokenJSONRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, tokenFixture("open-a")))

	rotated := tokenFixture("open-a")
	rotated.AccessToken = "act.rotated"
	require.NoError(t, repo.Upsert(ctx, rotated))

	got, err := repo.Get(ctx, "open-a")
	require.NoError(t, err)
	assert.Equal(t, "act.rotated", got.AccessToken)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "upsert must not duplicate the record")
}

func TestTokenJSONRepoMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_tokens.json")
	repo := NewTokenJSONRepo(path)
	ctx := context.Background()

	_, err := repo.Get(ctx, "open-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrTokenNotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a store that does not exist yet is just empty")
}

func TestTokenJSONRepoDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_tokens.json")
	repo := NewTokenJSONRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, tokenFixture("open-a")))
	require.NoError(t, repo.Upsert(ctx, tokenFixture("open-b")))

	require.NoError(t, repo.Delete(ctx, "open-a"))

	_, err := repo.Get(ctx, "open-a")
	assert.True(t, errors.Is(err, auth.ErrTokenNotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "the other creator's token stays")
	assert.Equal(t, "open-b", list[0].OpenID)

	err = repo.Delete(ctx, "open-a")
	assert.True(t, errors.Is(err, auth.ErrTokenNotFound), "deleting a missing token reports it")
}

func TestTokenJSONRepoRejectsAnonymousToken(t *testing.T) {
	repo := NewTokenJSONRepo(filepath.Join(t.TempDir(), "user_tokens.json"))
	require.Error(t, repo.Upsert(context.Background(), &models.UserToken{AccessToken: "act.x"}))
	require.Error(t, repo.Upsert(context.Background(), nil))
}

// The on-disk layout is a plain object keyed by open_id so it can be edited
// or inspected by hand.
func TestTokenJSONRepoFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_tokens.json")
	repo := NewTokenJSONRepo(path)
	require.NoError(t, repo.Upsert(context.Background(), tokenFixture("open-a")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk map[string]*models.UserToken
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Contains(t, onDisk, "open-a")
	assert.Equal(t, "act.open-a", onDisk["open-a"].AccessToken)
}

func TestTokenJSONRepoSurvivesProcessRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_tokens.json")
	ctx := context.Background()

	require.NoError(t, NewTokenJSONRepo(path).Upsert(ctx, tokenFixture("open-a")))

	// A new repo instance over the same file sees the token.
	got, err := NewTokenJSONRepo(path).Get(ctx, "open-a")
	require.NoError(t, err)
	assert.Equal(t, "act.open-a", got.AccessToken)
}
