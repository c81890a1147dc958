package uploads

import (
	"context"
	"io"

	"github.com/creatorstack/tiktok-uploader/internal/models"
)

// Repository is the Direct Post API surface the upload pipeline drives.
type Repository interface {
	QueryCreatorInfo(ctx context.Context, token *models.UserToken) (*models.CreatorInfo, error)
	InitUpload(ctx context.Context, token *models.UserToken, req *models.InitUploadRequest) (*models.UploadSession, error)
	// UploadChunk streams one byte range to the session's upload URL and
	// reports whether the platform acknowledged the whole file as received.
	UploadChunk(ctx context.Context, uploadURL string, chunk models.Chunk, totalSize int64, body io.Reader) (bool, error)
	QueryPublishStatus(ctx context.Context, token *models.UserToken, publishID string) (*models.PublishStatus, error)
}
