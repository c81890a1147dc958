package usecase

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Uploader: config.UploaderConfig{
			MaxRetries:     3,
			RetryBackoff:   time.Millisecond,
			RequestTimeout: time.Second,
			PollInterval:   time.Millisecond,
			PollTimeout:    250 * time.Millisecond,
			MinChunkSize:   256,
			MaxChunkSize:   1024,
			MaxChunkCount:  1000,
		},
		Logger: config.Logger{Level: "error", DisableCaller: true, DisableStacktrace: true},
	}
}

func newTestLogger(cfg *config.Config) logger.Logger {
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	return log
}

func writeTempVideo(t *testing.T, size int64) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func testToken() *models.UserToken {
	return &models.UserToken{OpenID: "open123", AccessToken: "act.test"}
}

type statusReply struct {
	status *models.PublishStatus
	err    error
}

// fakeDirectPostRepo implements uploads.Repository in memory, recording every
// call so tests can assert on order, attempts and bodies.
type fakeDirectPostRepo struct {
	mu sync.Mutex

	creatorInfo  *models.CreatorInfo
	creatorErr   error
	creatorCalls int

	initReq   *models.InitUploadRequest
	initErr   error
	initHook  func()
	initCalls int

	chunkErr      func(chunk models.Chunk, attempt int) error
	chunks        []models.Chunk
	bodies        [][]byte
	chunkAttempts map[int]int

	statusSeq   []statusReply
	statusCalls int
}

func (f *fakeDirectPostRepo) QueryCreatorInfo(ctx context.Context, token *models.UserToken) (*models.CreatorInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creatorCalls++
	if f.creatorErr != nil {
		return nil, f.creatorErr
	}
	if f.creatorInfo != nil {
		return f.creatorInfo, nil
	}
	return &models.CreatorInfo{
		Username:            "tester",
		PrivacyLevelOptions: []string{"PUBLIC_TO_EVERYONE", "SELF_ONLY"},
	}, nil
}

func (f *fakeDirectPostRepo) InitUpload(ctx context.Context, token *models.UserToken, req *models.InitUploadRequest) (*models.UploadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if f.initErr != nil {
		return nil, f.initErr
	}
	if f.initHook != nil {
		f.initHook()
	}
	f.initReq = req
	return &models.UploadSession{
		PublishID:  "v_pub.test123",
		UploadURL:  "https://upload.example.com/v1",
		VideoSize:  req.SourceInfo.VideoSize,
		ChunkSize:  req.SourceInfo.ChunkSize,
		ChunkCount: req.SourceInfo.TotalChunkCount,
		Status:     models.SessionStatusInitialized,
	}, nil
}

func (f *fakeDirectPostRepo) UploadChunk(ctx context.Context, uploadURL string, chunk models.Chunk, totalSize int64, body io.Reader) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chunkAttempts == nil {
		f.chunkAttempts = make(map[int]int)
	}
	f.chunkAttempts[chunk.Index]++
	if f.chunkErr != nil {
		if err := f.chunkErr(chunk, f.chunkAttempts[chunk.Index]); err != nil {
			return false, err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, err
	}
	f.chunks = append(f.chunks, chunk)
	f.bodies = append(f.bodies, data)
	return chunk.End == totalSize-1, nil
}

func (f *fakeDirectPostRepo) QueryPublishStatus(ctx context.Context, token *models.UserToken, publishID string) (*models.PublishStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if len(f.statusSeq) == 0 {
		return &models.PublishStatus{Status: models.PublishStatusComplete}, nil
	}
	reply := f.statusSeq[0]
	if len(f.statusSeq) > 1 {
		f.statusSeq = f.statusSeq[1:]
	}
	return reply.status, reply.err
}

func newUploadTest(repo *fakeDirectPostRepo) uploads.UseCase {
	cfg := newTestConfig()
	return NewUploadUseCase(cfg, repo, newTestLogger(cfg))
}

func TestUploadVideoSendsEveryChunkInOrder(t *testing.T) {
	path, data := writeTempVideo(t, 2560)
	repo := &fakeDirectPostRepo{
		statusSeq: []statusReply{
			{status: &models.PublishStatus{Status: models.PublishStatusProcessingUpload, UploadedBytes: 2560}},
			{status: &models.PublishStatus{Status: models.PublishStatusComplete}},
		},
	}
	uc := newUploadTest(repo)

	var progress [][2]int
	job := &models.UploadJob{
		UserID:      "open123",
		VideoPath:   path,
		Description: "hello world",
		Tags:        []string{"golang", "#testing"},
	}
	session, err := uc.UploadVideo(context.Background(), testToken(), job, path, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionStatusPublished, session.Status)
	assert.Equal(t, "v_pub.test123", session.PublishID)

	// Init carried the rendered caption, account defaults and the plan shape.
	require.NotNil(t, repo.initReq)
	assert.Equal(t, "hello world #golang #testing", repo.initReq.PostInfo.Title)
	assert.Equal(t, "SELF_ONLY", repo.initReq.PostInfo.PrivacyLevel)
	assert.Equal(t, models.SourceFileUpload, repo.initReq.SourceInfo.Source)
	assert.Equal(t, int64(2560), repo.initReq.SourceInfo.VideoSize)
	assert.Equal(t, int64(1024), repo.initReq.SourceInfo.ChunkSize)
	assert.Equal(t, 3, repo.initReq.SourceInfo.TotalChunkCount)

	// Chunks arrive in plan order and reassemble to the exact file bytes.
	require.Len(t, repo.chunks, 3)
	var sent []byte
	var next int64
	for i, chunk := range repo.chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, next, chunk.Start)
		next = chunk.End + 1
		sent = append(sent, repo.bodies[i]...)
	}
	assert.Equal(t, data, sent)

	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestUploadVideoAppliesJobPrivacyOverDefault(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path, PrivacyLevel: "PUBLIC_TO_EVERYONE"}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "PUBLIC_TO_EVERYONE", repo.initReq.PostInfo.PrivacyLevel)
}

func TestUploadVideoRetriesTransientChunks(t *testing.T) {
	path, _ := writeTempVideo(t, 2560)
	repo := &fakeDirectPostRepo{
		chunkErr: func(chunk models.Chunk, attempt int) error {
			if chunk.Index == 1 && attempt <= 2 {
				return uploads.NewAPIError(500, "internal_error", "upstream hiccup", "log123")
			}
			return nil
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.chunkAttempts[0])
	assert.Equal(t, 3, repo.chunkAttempts[1], "two failures then success")
	assert.Equal(t, 1, repo.chunkAttempts[2])
	assert.Len(t, repo.bodies, 3, "failed attempts must not count as accepted chunks")
}

func TestUploadVideoGivesUpAfterRetryBudget(t *testing.T) {
	path, _ := writeTempVideo(t, 2560)
	repo := &fakeDirectPostRepo{
		chunkErr: func(chunk models.Chunk, attempt int) error {
			return uploads.NewAPIError(503, "", "service unavailable", "log456")
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrChunkUpload))
	assert.Equal(t, uploads.ReasonChunkUpload, uploads.FailureClass(err))

	assert.Equal(t, 4, repo.chunkAttempts[0], "initial attempt plus three retries")
	assert.Zero(t, repo.chunkAttempts[1], "later chunks must not be attempted")
	assert.Zero(t, repo.statusCalls, "no status polling after a dead chunk")
}

func TestUploadVideoDoesNotRetryRejectedChunks(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		chunkErr: func(chunk models.Chunk, attempt int) error {
			return uploads.NewAPIError(400, "invalid_param", "bad range", "log789")
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrRemoteRejected))
	assert.Equal(t, 1, repo.chunkAttempts[0], "client errors are final")
}

func TestUploadVideoRetriesInitBeforeFailing(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		initErr: uploads.NewAPIError(502, "", "bad gateway", ""),
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrTransient))
	assert.Equal(t, 4, repo.initCalls)
	assert.Zero(t, repo.chunkAttempts[0])
}

func TestUploadVideoStopsOnShortRead(t *testing.T) {
	path, _ := writeTempVideo(t, 2560)
	repo := &fakeDirectPostRepo{}
	// The file shrinks between planning and transmission, so the second
	// chunk's read comes up short of its planned size.
	repo.initHook = func() {
		require.NoError(t, os.Truncate(path, 1500))
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrLocalIO))
	assert.Equal(t, uploads.ReasonLocalIO, uploads.FailureClass(err))

	assert.Equal(t, 1, repo.chunkAttempts[0], "the first chunk still read cleanly")
	assert.Zero(t, repo.chunkAttempts[1], "a short read must never reach the wire")
	assert.Zero(t, repo.statusCalls)
}

func TestUploadVideoRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mp4")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	repo := &fakeDirectPostRepo{}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrInvalidInput))
	assert.Zero(t, repo.creatorCalls, "no network traffic for unusable input")
}

func TestUploadVideoRejectsMissingToken(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), &models.UserToken{OpenID: "open123"}, job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrAuth))
}

func TestUploadVideoSurfacesAuthErrors(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		creatorErr: uploads.NewAPIError(200, "access_token_invalid", "The access token is invalid", "logabc"),
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	_, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrAuth))
	assert.Equal(t, uploads.ReasonAuth, uploads.FailureClass(err))
	assert.Zero(t, repo.initCalls)
	assert.Equal(t, 1, repo.creatorCalls, "auth failures are not retried")
}

func TestUploadVideoTimesOutWhenProcessingStalls(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		statusSeq: []statusReply{
			{status: &models.PublishStatus{Status: models.PublishStatusProcessingUpload}},
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	session, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrStatusTimeout))
	assert.Equal(t, uploads.ReasonStatusTimeout, uploads.FailureClass(err))
	require.NotNil(t, session)
	assert.Equal(t, models.SessionStatusProcessing, session.Status)
	assert.Greater(t, repo.statusCalls, 1, "poller should have kept asking until the deadline")
}

func TestUploadVideoToleratesTransientPollFailures(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		statusSeq: []statusReply{
			{err: uploads.NewAPIError(500, "internal_error", "try later", "")},
			{status: &models.PublishStatus{Status: models.PublishStatusComplete}},
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	session, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPublished, session.Status)
	assert.Equal(t, 2, repo.statusCalls)
}

func TestUploadVideoReportsPublishFailure(t *testing.T) {
	path, _ := writeTempVideo(t, 512)
	repo := &fakeDirectPostRepo{
		statusSeq: []statusReply{
			{status: &models.PublishStatus{Status: models.PublishStatusFailed, FailReason: "video_format_check_failed"}},
		},
	}
	uc := newUploadTest(repo)

	job := &models.UploadJob{UserID: "open123", VideoPath: path}
	session, err := uc.UploadVideo(context.Background(), testToken(), job, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrPublishFailed))
	require.NotNil(t, session)
	assert.Equal(t, models.SessionStatusFailed, session.Status)
	assert.Equal(t, "video_format_check_failed", session.FailReason)
}
