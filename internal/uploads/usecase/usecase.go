package usecase

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/creatorstack/tiktok-uploader/pkg/utils"
	"github.com/pkg/errors"
)

type uploadUC struct {
	cfg        *config.Config
	tiktokRepo uploads.Repository
	logger     logger.Logger
}

func NewUploadUseCase(
	cfg *config.Config,
	tiktokRepo uploads.Repository,
	log logger.Logger,
) uploads.UseCase {
	return &uploadUC{
		cfg:        cfg,
		tiktokRepo: tiktokRepo,
		logger:     log,
	}
}

func (u *uploadUC) constraints() models.UploadConstraints {
	c := models.DefaultUploadConstraints()
	if u.cfg.Uploader.MinChunkSize > 0 {
		c.MinChunkSize = u.cfg.Uploader.MinChunkSize
	}
	if u.cfg.Uploader.MaxChunkSize > 0 {
		c.MaxChunkSize = u.cfg.Uploader.MaxChunkSize
	}
	if u.cfg.Uploader.MaxChunkCount > 0 {
		c.MaxChunkCount = u.cfg.Uploader.MaxChunkCount
	}
	return c
}

func (u *uploadUC) UploadVideo(ctx context.Context, token *models.UserToken, job *models.UploadJob, videoPath string, onProgress uploads.ProgressFunc) (*models.UploadSession, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.Wrap(uploads.ErrAuth, "no access token for upload")
	}

	fi, err := os.Stat(videoPath)
	if err != nil {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "video file %s: %v", videoPath, err)
	}
	if fi.IsDir() {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "video path %s is a directory", videoPath)
	}
	totalSize := fi.Size()
	if totalSize == 0 {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "video file %s is empty", videoPath)
	}

	info, err := u.queryCreatorInfo(ctx, token)
	if err != nil {
		u.logger.Errorf("UploadVideo - QueryCreatorInfo error: %v", err)
		return nil, err
	}

	plan, err := PlanChunks(totalSize, u.constraints())
	if err != nil {
		return nil, err
	}

	session, err := u.initSession(ctx, token, job, info, totalSize, plan)
	if err != nil {
		u.logger.Errorf("UploadVideo - InitUpload error: %v", err)
		return nil, err
	}
	u.logger.Infof("initialized upload session publish_id=%s size=%d chunks=%d", session.PublishID, totalSize, len(plan))

	file, err := os.Open(videoPath)
	if err != nil {
		return session, errors.Wrapf(uploads.ErrLocalIO, "failed to open %s: %v", videoPath, err)
	}
	defer file.Close()

	if err := u.transmit(ctx, session, plan, file, totalSize, onProgress); err != nil {
		u.logger.Errorf("UploadVideo - transmit error: %v", err)
		return session, err
	}

	if err := u.awaitPublish(ctx, token, session); err != nil {
		u.logger.Errorf("UploadVideo - awaitPublish error: %v", err)
		return session, err
	}
	u.logger.Infof("published publish_id=%s", session.PublishID)
	return session, nil
}

func (u *uploadUC) queryCreatorInfo(ctx context.Context, token *models.UserToken) (*models.CreatorInfo, error) {
	var info *models.CreatorInfo
	err := utils.Retry(ctx, u.cfg.Uploader.MaxRetries, u.cfg.Uploader.RetryBackoffDuration(), uploads.IsTransient, func() error {
		var err error
		info, err = u.tiktokRepo.QueryCreatorInfo(ctx, token)
		return err
	})
	return info, err
}

func (u *uploadUC) initSession(ctx context.Context, token *models.UserToken, job *models.UploadJob, info *models.CreatorInfo, totalSize int64, plan models.ChunkPlan) (*models.UploadSession, error) {
	privacy := job.PrivacyLevel
	if privacy == "" {
		privacy = info.DefaultPrivacyLevel()
	}
	req := &models.InitUploadRequest{
		PostInfo: models.PostInfo{
			Title:                 job.Caption(),
			PrivacyLevel:          privacy,
			DisableDuet:           info.DuetDisabled,
			DisableComment:        info.CommentDisabled,
			DisableStitch:         info.StitchDisabled,
			VideoCoverTimestampMs: u.cfg.Uploader.VideoCoverOffsetMs,
		},
		SourceInfo: models.SourceInfo{
			Source:          models.SourceFileUpload,
			VideoSize:       totalSize,
			ChunkSize:       plan[0].Size,
			TotalChunkCount: len(plan),
		},
	}

	var session *models.UploadSession
	err := utils.Retry(ctx, u.cfg.Uploader.MaxRetries, u.cfg.Uploader.RetryBackoffDuration(), uploads.IsTransient, func() error {
		var err error
		session, err = u.tiktokRepo.InitUpload(ctx, token, req)
		return err
	})
	return session, err
}

func (u *uploadUC) transmit(ctx context.Context, session *models.UploadSession, plan models.ChunkPlan, file *os.File, totalSize int64, onProgress uploads.ProgressFunc) error {
	var bufLen int64
	for _, c := range plan {
		if c.Size > bufLen {
			bufLen = c.Size
		}
	}
	buf := make([]byte, bufLen)

	completed := false
	for _, chunk := range plan {
		data := buf[:chunk.Size]
		n, err := file.ReadAt(data, chunk.Start)
		if err != nil && !(errors.Is(err, io.EOF) && int64(n) == chunk.Size) {
			return errors.Wrapf(uploads.ErrLocalIO,
				"read %d bytes at offset %d for chunk %d: %v", chunk.Size, chunk.Start, chunk.Index, err)
		}
		if int64(n) != chunk.Size {
			return errors.Wrapf(uploads.ErrLocalIO,
				"chunk %d: read %d bytes, plan expects %d", chunk.Index, n, chunk.Size)
		}

		var done bool
		attempts := 0
		err = utils.Retry(ctx, u.cfg.Uploader.MaxRetries, u.cfg.Uploader.RetryBackoffDuration(), uploads.IsTransient, func() error {
			attempts++
			if attempts > 1 {
				u.logger.Warnf("retrying chunk %d/%d (attempt %d) for publish_id=%s", chunk.Index+1, len(plan), attempts, session.PublishID)
			}
			var sendErr error
			done, sendErr = u.tiktokRepo.UploadChunk(ctx, session.UploadURL, chunk, totalSize, bytes.NewReader(data))
			return sendErr
		})
		if err != nil {
			if uploads.IsTransient(err) {
				return errors.Wrapf(uploads.ErrChunkUpload,
					"chunk %d/%d gave up after %d attempts: %v", chunk.Index+1, len(plan), attempts, err)
			}
			return errors.Wrapf(err, "chunk %d/%d", chunk.Index+1, len(plan))
		}

		session.Status = models.SessionStatusUploading
		if onProgress != nil {
			onProgress(chunk.Index+1, len(plan))
		}
		if done {
			completed = true
			if chunk.Index != len(plan)-1 {
				u.logger.Warnf("platform acknowledged completion at chunk %d of %d for publish_id=%s", chunk.Index+1, len(plan), session.PublishID)
			}
			break
		}
	}

	// Absence of the 201 on the final range is not fatal: every range was
	// accepted, so the status poll decides how the upload actually ended.
	if completed {
		session.Status = models.SessionStatusProcessing
	} else {
		u.logger.Warnf("all %d chunks accepted but platform did not signal completion for publish_id=%s", len(plan), session.PublishID)
	}
	return nil
}

func (u *uploadUC) awaitPublish(ctx context.Context, token *models.UserToken, session *models.UploadSession) error {
	interval := u.cfg.Uploader.PollIntervalDuration()
	deadline := time.Now().Add(u.cfg.Uploader.PollTimeoutDuration())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := u.tiktokRepo.QueryPublishStatus(ctx, token, session.PublishID)
		switch {
		case err == nil:
			switch status.Status {
			case models.PublishStatusComplete:
				session.Status = models.SessionStatusPublished
				return nil
			case models.PublishStatusFailed:
				session.Status = models.SessionStatusFailed
				session.FailReason = status.FailReason
				return errors.Wrapf(uploads.ErrPublishFailed, "publish_id=%s fail_reason=%s", session.PublishID, status.FailReason)
			}
			u.logger.Debugf("publish_id=%s status=%s uploaded_bytes=%d", session.PublishID, status.Status, status.UploadedBytes)
		case uploads.IsTransient(err):
			u.logger.Warnf("status poll for publish_id=%s failed, will try again: %v", session.PublishID, err)
		default:
			return err
		}

		if time.Now().After(deadline) {
			return errors.Wrapf(uploads.ErrStatusTimeout,
				"publish_id=%s not terminal after %s", session.PublishID, u.cfg.Uploader.PollTimeoutDuration())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
