package worker

import (
	"context"
	"os"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/auth"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/creatorstack/tiktok-uploader/pkg/utils"
	"github.com/pkg/errors"
)

// Driver walks the upload queue one job at a time. Jobs never overlap: the
// platform rate-limits per account and session, so job N+1 starts no network
// activity until job N is terminal. A failed job is recorded and skipped
// over, never aborting the rest of the run.
type Driver struct {
	cfg        *config.Config
	logger     logger.Logger
	authUC     auth.UseCase
	uploadUC   uploads.UseCase
	awsRepo    uploads.AWSRepository
	statusRepo uploads.RedisRepository
	runID      string
}

// NewDriver wires the run. awsRepo and statusRepo may be nil: jobs with s3://
// sources then fail as invalid input, and progress reporting is skipped.
func NewDriver(
	cfg *config.Config,
	logger logger.Logger,
	authUC auth.UseCase,
	uploadUC uploads.UseCase,
	awsRepo uploads.AWSRepository,
	statusRepo uploads.RedisRepository,
	runID string,
) *Driver {
	return &Driver{
		cfg:        cfg,
		logger:     logger,
		authUC:     authUC,
		uploadUC:   uploadUC,
		awsRepo:    awsRepo,
		statusRepo: statusRepo,
		runID:      runID,
	}
}

// Run produces exactly one result per job, in queue order.
func (d *Driver) Run(ctx context.Context, jobs []*models.UploadJob) []*models.JobResult {
	d.logger.Infof("starting upload run run_id=%s jobs=%d", d.runID, len(jobs))

	results := make([]*models.JobResult, 0, len(jobs))
	for i, job := range jobs {
		d.logger.Infof("job %d/%d job_id=%s user_id=%s video=%s", i+1, len(jobs), job.JobID, job.UserID, job.VideoPath)
		result := d.runJob(ctx, job)
		results = append(results, result)
		d.recordResult(ctx, result)
		if result.Succeeded() {
			d.logger.Infof("job %s published publish_id=%s in %s", job.JobID, result.PublishID, result.FinishedAt.Sub(result.StartedAt))
		} else {
			d.logger.Errorf("job %s failed reason=%s: %s", job.JobID, result.Reason, result.Message)
		}
	}

	var failed int
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	d.logger.Infof("run %s complete: %d succeeded, %d failed", d.runID, len(results)-failed, failed)
	return results
}

func (d *Driver) runJob(ctx context.Context, job *models.UploadJob) *models.JobResult {
	result := &models.JobResult{
		JobID:     job.JobID,
		UserID:    job.UserID,
		VideoPath: job.VideoPath,
		StartedAt: time.Now(),
	}
	if err := ctx.Err(); err != nil {
		return d.fail(result, errors.Wrap(err, "run cancelled before job started"))
	}

	token, err := d.authUC.GetValidToken(ctx, job.UserID)
	if err != nil {
		return d.fail(result, errors.Wrapf(uploads.ErrAuth, "no usable token for user %s: %v", job.UserID, err))
	}

	videoPath, cleanup, err := d.resolveVideo(ctx, job)
	if err != nil {
		return d.fail(result, err)
	}
	defer cleanup()

	session, err := d.uploadUC.UploadVideo(ctx, token, job, videoPath, d.progressFunc(ctx, job))
	if errors.Is(err, uploads.ErrAuth) {
		// The stored expiry can lag a server-side revocation, so one forced
		// refresh is allowed per job. Tokens are only swapped between whole
		// pipeline attempts, never while a session is in flight.
		d.logger.Warnf("job %s: token rejected, refreshing and retrying once: %v", job.JobID, err)
		token, err = d.authUC.RefreshToken(ctx, job.UserID)
		if err != nil {
			d.publishSession(ctx, job, session)
			return d.fail(result, errors.Wrapf(uploads.ErrAuth, "refresh after rejected token failed for user %s: %v", job.UserID, err))
		}
		session, err = d.uploadUC.UploadVideo(ctx, token, job, videoPath, d.progressFunc(ctx, job))
	}
	d.publishSession(ctx, job, session)
	if err != nil {
		return d.fail(result, err)
	}

	result.Outcome = models.JobOutcomeSuccess
	result.PublishID = session.PublishID
	result.FinishedAt = time.Now()
	return result
}

func (d *Driver) fail(result *models.JobResult, err error) *models.JobResult {
	result.Outcome = models.JobOutcomeFailed
	result.Reason = uploads.FailureClass(err)
	result.Message = err.Error()
	result.FinishedAt = time.Now()
	return result
}

// resolveVideo turns the job's video reference into a local file path,
// downloading s3:// sources into the temp dir after a free-space check.
// cleanup removes the downloaded copy; for local paths it is a no-op.
func (d *Driver) resolveVideo(ctx context.Context, job *models.UploadJob) (string, func(), error) {
	noop := func() {}
	if !utils.IsS3URI(job.VideoPath) {
		return job.VideoPath, noop, nil
	}
	if d.awsRepo == nil {
		return "", noop, errors.Wrapf(uploads.ErrInvalidInput, "job %s names %s but no s3 source is configured", job.JobID, job.VideoPath)
	}
	bucket, key, err := utils.ParseS3URI(job.VideoPath)
	if err != nil {
		return "", noop, errors.Wrapf(uploads.ErrInvalidInput, "job %s: %v", job.JobID, err)
	}

	size, err := d.awsRepo.HeadVideo(ctx, bucket, key)
	if err != nil {
		return "", noop, err
	}
	tempDir := d.cfg.Uploader.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", noop, errors.Wrapf(uploads.ErrLocalIO, "failed to create temp dir %s: %v", tempDir, err)
	}
	required := uint64(size) + uint64(d.cfg.Uploader.MinFreeDiskMB)*1024*1024
	if ok, free := utils.CheckDiskSpace(tempDir, required); !ok {
		return "", noop, errors.Wrapf(uploads.ErrLocalIO,
			"not enough disk in %s for %s: need %d bytes, %d free", tempDir, job.VideoPath, required, free)
	}

	d.logger.Infof("downloading %s (%d bytes) to %s", job.VideoPath, size, tempDir)
	localPath, err := d.awsRepo.DownloadVideo(ctx, bucket, key, tempDir)
	if err != nil {
		return "", noop, err
	}
	return localPath, func() {
		if err := os.Remove(localPath); err != nil {
			d.logger.Warnf("failed to remove downloaded video %s: %v", localPath, err)
		}
	}, nil
}

// progressFunc reports per-chunk progress to the status sink. Sink failures
// only warn; they never interrupt an upload.
func (d *Driver) progressFunc(ctx context.Context, job *models.UploadJob) uploads.ProgressFunc {
	if d.statusRepo == nil {
		return nil
	}
	return func(uploadedChunks, totalChunks int) {
		if err := d.statusRepo.SetJobProgress(ctx, job.JobID, uploadedChunks, totalChunks); err != nil {
			d.logger.Warnf("job %s: progress update failed: %v", job.JobID, err)
		}
	}
}

func (d *Driver) publishSession(ctx context.Context, job *models.UploadJob, session *models.UploadSession) {
	if d.statusRepo == nil || session == nil {
		return
	}
	if err := d.statusRepo.SetJobStatus(ctx, job.JobID, session.Status); err != nil {
		d.logger.Warnf("job %s: status update failed: %v", job.JobID, err)
	}
}

func (d *Driver) recordResult(ctx context.Context, result *models.JobResult) {
	if d.statusRepo == nil {
		return
	}
	if err := d.statusRepo.RecordResult(ctx, d.runID, result); err != nil {
		d.logger.Warnf("job %s: result record failed: %v", result.JobID, err)
	}
}
