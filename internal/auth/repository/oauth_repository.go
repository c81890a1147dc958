package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/pkg/errors"
)

const tokenPath = "/v2/oauth/token/"

type oauthRepo struct {
	cfg    *config.Config
	client *http.Client
}

func NewOAuthRepo(cfg *config.Config) auth.OAuthRepository {
	return &oauthRepo{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// tokenResponse is the flat (non-enveloped) token endpoint payload. Grant
// errors arrive in-band with a 200 status.
type tokenResponse struct {
	OpenID           string `json:"open_id"`
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (o *oauthRepo) ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.UserToken, error) {
	form := url.Values{}
	form.Set("client_key", o.cfg.TikTok.ClientKey)
	form.Set("client_secret", o.cfg.TikTok.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", o.cfg.TikTok.RedirectURI)
	form.Set("code_verifier", codeVerifier)
	return o.requestToken(ctx, form)
}

func (o *oauthRepo) RefreshToken(ctx context.Context, refreshToken string) (*models.UserToken, error) {
	form := url.Values{}
	form.Set("client_key", o.cfg.TikTok.ClientKey)
	form.Set("client_secret", o.cfg.TikTok.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return o.requestToken(ctx, form)
}

func (o *oauthRepo) requestToken(ctx context.Context, form url.Values) (*models.UserToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.TikTok.APIBaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := o.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "token request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token response")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Wrapf(err, "unparseable token response (status %d)", res.StatusCode)
	}
	if tr.Error != "" {
		return nil, errors.Errorf("token grant rejected: %s: %s", tr.Error, tr.ErrorDescription)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("token endpoint returned status %d: %s", res.StatusCode, string(body))
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token response carried no access token")
	}

	now := time.Now()
	return &models.UserToken{
		OpenID:           tr.OpenID,
		AccessToken:      tr.AccessToken,
		RefreshToken:     tr.RefreshToken,
		ExpiresAt:        now.Add(time.Duration(tr.ExpiresIn) * time.Second),
		RefreshExpiresAt: now.Add(time.Duration(tr.RefreshExpiresIn) * time.Second),
		Scope:            tr.Scope,
		TokenType:        tr.TokenType,
		UpdatedAt:        now,
	}, nil
}
