package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/pkg/errors"
)

// tokenJSONRepo keeps every creator's tokens in one JSON file keyed by
// open_id. Writes go through a temp file and rename so a crash never leaves
// a half-written store behind.
type tokenJSONRepo struct {
	path string
	mu   sync.RWMutex
}

func NewTokenJSONRepo(path string) auth.Repository {
	return &tokenJSONRepo{path: path}
}

func (r *tokenJSONRepo) load() (map[string]*models.UserToken, error) {
	tokens := map[string]*models.UserToken{}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return tokens, nil
		}
		return nil, errors.Wrapf(err, "failed to read token file %s", r.path)
	}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, errors.Wrapf(err, "failed to parse token file %s", r.path)
	}
	return tokens, nil
}

func (r *tokenJSONRepo) save(tokens map[string]*models.UserToken) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode tokens")
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create token dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp token file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write temp token file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp token file")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace token file %s", r.path)
	}
	return nil
}

func (r *tokenJSONRepo) Get(ctx context.Context, openID string) (*models.UserToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens, err := r.load()
	if err != nil {
		return nil, err
	}
	token, ok := tokens[openID]
	if !ok {
		return nil, errors.Wrapf(auth.ErrTokenNotFound, "open_id=%s", openID)
	}
	return token, nil
}

func (r *tokenJSONRepo) Upsert(ctx context.Context, token *models.UserToken) error {
	if token == nil || token.OpenID == "" {
		return errors.New("token must carry an open_id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens, err := r.load()
	if err != nil {
		return err
	}
	token.UpdatedAt = time.Now()
	tokens[token.OpenID] = token
	return r.save(tokens)
}

func (r *tokenJSONRepo) Delete(ctx context.Context, openID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := tokens[openID]; !ok {
		return errors.Wrapf(auth.ErrTokenNotFound, "open_id=%s", openID)
	}
	delete(tokens, openID)
	return r.save(tokens)
}

func (r *tokenJSONRepo) List(ctx context.Context) ([]*models.UserToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens, err := r.load()
	if err != nil {
		return nil, err
	}
	list := make([]*models.UserToken, 0, len(tokens))
	for _, t := range tokens {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OpenID < list[j].OpenID })
	return list, nil
}
