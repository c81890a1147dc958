package usecase

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/creatorstack/tiktok-uploader/pkg/utils"
	"github.com/pkg/errors"
)

const (
	authorizePath       = "/v2/auth/authorize/"
	defaultPendingTTL   = 30 * time.Minute
	challengeMethodS256 = "S256"
)

// pendingAuth holds the code verifier between the redirect we issued and the
// callback that needs it. Each entry is single use.
type pendingAuth struct {
	verifier  string
	createdAt time.Time
}

type authUC struct {
	cfg       *config.Config
	tokenRepo auth.Repository
	oauthRepo auth.OAuthRepository
	logger    logger.Logger

	mu      sync.Mutex
	pending map[string]*pendingAuth
}

func NewAuthUseCase(cfg *config.Config, tokenRepo auth.Repository, oauthRepo auth.OAuthRepository, log logger.Logger) auth.UseCase {
	return &authUC{
		cfg:       cfg,
		tokenRepo: tokenRepo,
		oauthRepo: oauthRepo,
		logger:    log,
		pending:   make(map[string]*pendingAuth),
	}
}

func (u *authUC) pendingTTL() time.Duration {
	if u.cfg.Server.StateExpire > 0 {
		return u.cfg.Server.StateExpire
	}
	return defaultPendingTTL
}

func (u *authUC) AuthorizeURL(ctx context.Context) (string, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return "", err
	}
	state, stateID, err := utils.GenerateStateToken(u.cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign state")
	}

	now := time.Now()
	u.mu.Lock()
	for id, p := range u.pending {
		if now.Sub(p.createdAt) > u.pendingTTL() {
			delete(u.pending, id)
		}
	}
	u.pending[stateID] = &pendingAuth{verifier: verifier, createdAt: now}
	u.mu.Unlock()

	q := url.Values{}
	q.Set("client_key", u.cfg.TikTok.ClientKey)
	q.Set("response_type", "code")
	q.Set("scope", u.cfg.TikTok.Scopes)
	q.Set("redirect_uri", u.cfg.TikTok.RedirectURI)
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge(verifier))
	q.Set("code_challenge_method", challengeMethodS256)

	return u.cfg.TikTok.AuthBaseURL + authorizePath + "?" + q.Encode(), nil
}

// takePending removes and returns the verifier for a state id, enforcing
// single use and the pending TTL.
func (u *authUC) takePending(stateID string) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.pending[stateID]
	if !ok {
		return "", false
	}
	delete(u.pending, stateID)
	if time.Since(p.createdAt) > u.pendingTTL() {
		return "", false
	}
	return p.verifier, true
}

func (u *authUC) CompleteAuthorization(ctx context.Context, code, state string) (*models.UserToken, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	claims, err := utils.ValidateStateToken(state, u.cfg.Server.StateSecretKey)
	if err != nil {
		return nil, errors.Wrap(err, "state parameter rejected")
	}
	verifier, ok := u.takePending(claims.ID)
	if !ok {
		return nil, errors.New("state parameter unknown, expired or already used")
	}

	token, err := u.oauthRepo.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, errors.Wrap(err, "code exchange failed")
	}
	if err := u.tokenRepo.Upsert(ctx, token); err != nil {
		return nil, errors.Wrap(err, "failed to persist token")
	}
	u.logger.Infof("authorized creator open_id=%s scope=%s", token.OpenID, token.Scope)
	return token, nil
}

func (u *authUC) GetValidToken(ctx context.Context, openID string) (*models.UserToken, error) {
	token, err := u.tokenRepo.Get(ctx, openID)
	if err != nil {
		return nil, err
	}
	if token.Valid(u.cfg.Uploader.TokenExpiryMarginDuration()) {
		return token, nil
	}
	u.logger.Infof("access token for open_id=%s expired or about to, refreshing", openID)
	return u.refresh(ctx, token)
}

func (u *authUC) RefreshToken(ctx context.Context, openID string) (*models.UserToken, error) {
	token, err := u.tokenRepo.Get(ctx, openID)
	if err != nil {
		return nil, err
	}
	return u.refresh(ctx, token)
}

func (u *authUC) refresh(ctx context.Context, token *models.UserToken) (*models.UserToken, error) {
	if !token.CanRefresh() {
		return nil, errors.Errorf("refresh grant for open_id=%s expired, re-authorization required", token.OpenID)
	}
	fresh, err := u.oauthRepo.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		return nil, errors.Wrapf(err, "refresh for open_id=%s failed", token.OpenID)
	}
	if fresh.OpenID == "" {
		fresh.OpenID = token.OpenID
	}
	// The platform may answer without rotating the refresh grant.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
		fresh.RefreshExpiresAt = token.RefreshExpiresAt
	}
	if err := u.tokenRepo.Upsert(ctx, fresh); err != nil {
		return nil, errors.Wrap(err, "failed to persist refreshed token")
	}
	u.logger.Infof("refreshed token for open_id=%s, valid until %s", fresh.OpenID, fresh.ExpiresAt.Format(time.RFC3339))
	return fresh, nil
}

func (u *authUC) ListTokens(ctx context.Context) ([]*models.UserToken, error) {
	return u.tokenRepo.List(ctx)
}

func (u *authUC) RevokeToken(ctx context.Context, openID string) error {
	if err := u.tokenRepo.Delete(ctx, openID); err != nil {
		return err
	}
	u.logger.Infof("revoked stored credentials for open_id=%s", openID)
	return nil
}

func (u *authUC) RefreshExpiring(ctx context.Context) (*auth.RefreshReport, error) {
	tokens, err := u.tokenRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	report := &auth.RefreshReport{Failed: map[string]string{}}
	margin := u.cfg.Uploader.TokenExpiryMarginDuration()
	for _, t := range tokens {
		switch {
		case t.Valid(margin):
			report.Skipped = append(report.Skipped, t.OpenID)
		case !t.CanRefresh():
			report.ReauthRequired = append(report.ReauthRequired, t.OpenID)
		default:
			if _, err := u.refresh(ctx, t); err != nil {
				u.logger.Errorf("RefreshExpiring - refresh error for open_id=%s: %v", t.OpenID, err)
				report.Failed[t.OpenID] = err.Error()
				continue
			}
			report.Refreshed = append(report.Refreshed, t.OpenID)
		}
	}
	return report, nil
}
