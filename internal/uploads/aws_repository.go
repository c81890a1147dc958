package uploads

import (
	"context"
)

// AWSRepository resolves queue entries whose video lives in object storage.
type AWSRepository interface {
	HeadVideo(ctx context.Context, bucket, key string) (int64, error)
	// DownloadVideo fetches the object into destDir and returns the local path.
	DownloadVideo(ctx context.Context, bucket, key, destDir string) (string, error)
}
