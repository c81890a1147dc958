package uploads

import (
	"context"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// ProgressFunc is invoked after every accepted chunk. Callers may pass nil.
type ProgressFunc func(uploadedChunks, totalChunks int)

// UseCase drives one local video file through the full direct post
// sequence: creator info, init, chunked transfer, and status polling.
type UseCase interface {
	UploadVideo(ctx context.Context, token *models.UserToken, job *models.UploadJob, videoPath string, onProgress ProgressFunc) (*models.UploadSession, error)
}
