package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/pkg/errors"
)

const (
	initUploadPath    = "/v2/post/publish/video/init/"
	publishStatusPath = "/v2/post/publish/status/fetch/"
	creatorInfoPath   = "/v2/post/publish/creator_info/query/"

	jsonContentType  = "application/json; charset=UTF-8"
	videoContentType = "video/mp4"
)

type tiktokRepository struct {
	cfg    *config.Config
	client *http.Client
}

func NewTikTokRepository(cfg *config.Config) uploads.Repository {
	return &tiktokRepository{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// apiEnvelope is the {data, error} wrapper every JSON endpoint responds with.
type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error apiErrorBody    `json:"error"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e apiErrorBody) ok() bool {
	return e.Code == "" || e.Code == "ok"
}

func (t *tiktokRepository) postJSON(ctx context.Context, token *models.UserToken, path string, reqBody interface{}, out interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return errors.Wrapf(uploads.ErrInvalidInput, "failed to encode request body: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Uploader.RequestTimeoutDuration())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.TikTok.APIBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", jsonContentType)

	res, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(uploads.ErrTransient, "request to %s failed: %v", path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(uploads.ErrTransient, "failed to read response from %s: %v", path, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return errors.Wrapf(uploads.ErrRemoteRejected, "unparseable response from %s: %v", path, err)
		}
		return uploads.NewAPIError(res.StatusCode, "", string(body), "")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 || !envelope.Error.ok() {
		return uploads.NewAPIError(res.StatusCode, envelope.Error.Code, envelope.Error.Message, envelope.Error.LogID)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(uploads.ErrRemoteRejected, "unparseable data payload from %s: %v", path, err)
		}
	}
	return nil
}

func (t *tiktokRepository) QueryCreatorInfo(ctx context.Context, token *models.UserToken) (*models.CreatorInfo, error) {
	info := &models.CreatorInfo{}
	if err := t.postJSON(ctx, token, creatorInfoPath, struct{}{}, info); err != nil {
		return nil, errors.Wrap(err, "creator info query failed")
	}
	return info, nil
}

func (t *tiktokRepository) InitUpload(ctx context.Context, token *models.UserToken, req *models.InitUploadRequest) (*models.UploadSession, error) {
	var data struct {
		PublishID string `json:"publish_id"`
		UploadURL string `json:"upload_url"`
	}
	if err := t.postJSON(ctx, token, initUploadPath, req, &data); err != nil {
		return nil, errors.Wrap(err, "upload init failed")
	}
	if data.PublishID == "" || data.UploadURL == "" {
		return nil, errors.Wrap(uploads.ErrRemoteRejected, "upload init returned no publish id or upload url")
	}
	return &models.UploadSession{
		PublishID:  data.PublishID,
		UploadURL:  data.UploadURL,
		VideoSize:  req.SourceInfo.VideoSize,
		ChunkSize:  req.SourceInfo.ChunkSize,
		ChunkCount: req.SourceInfo.TotalChunkCount,
		Status:     models.SessionStatusInitialized,
	}, nil
}

func (t *tiktokRepository) UploadChunk(ctx context.Context, uploadURL string, chunk models.Chunk, totalSize int64, body io.Reader) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return false, errors.Wrap(err, "failed to build chunk request")
	}
	req.ContentLength = chunk.Size
	req.Header.Set("Content-Type", videoContentType)
	req.Header.Set("Content-Range", chunk.ContentRange(totalSize))

	res, err := t.client.Do(req)
	if err != nil {
		return false, errors.Wrapf(uploads.ErrTransient, "chunk %d transfer failed: %v", chunk.Index, err)
	}
	defer res.Body.Close()

	// 201 acknowledges the final byte range; 206 a partial one.
	switch {
	case res.StatusCode == http.StatusCreated:
		return true, nil
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return false, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return false, uploads.NewAPIError(res.StatusCode, "", string(msg), res.Header.Get("x-tt-logid"))
}

func (t *tiktokRepository) QueryPublishStatus(ctx context.Context, token *models.UserToken, publishID string) (*models.PublishStatus, error) {
	req := map[string]string{"publish_id": publishID}
	status := &models.PublishStatus{}
	if err := t.postJSON(ctx, token, publishStatusPath, req, status); err != nil {
		return nil, errors.Wrap(err, "publish status fetch failed")
	}
	return status, nil
}
