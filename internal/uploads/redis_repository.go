package uploads

import (
	"context"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// RedisRepository publishes run progress for external observers. All writes
// are best effort; the pipeline never blocks on a slow sink.
type RedisRepository interface {
	SetJobStatus(ctx context.Context, jobID string, status models.SessionStatus) error
	SetJobProgress(ctx context.Context, jobID string, uploadedChunks, totalChunks int) error
	RecordResult(ctx context.Context, runID string, result *models.JobResult) error
}
