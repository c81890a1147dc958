package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
)

type awsRepository struct {
	client *s3.Client
}

func NewAwsRepository(awsClient *s3.Client) uploads.AWSRepository {
	return &awsRepository{
		client: awsClient,
	}
}

func (a *awsRepository) HeadVideo(ctx context.Context, bucket, key string) (int64, error) {
	res, err := a.client.HeadObject(
		ctx,
		&s3.HeadObjectInput{
			Bucket: &bucket,
			Key:    &key,
		},
	)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return 0, errors.Wrapf(uploads.ErrInvalidInput, "video object s3://%s/%s not found", bucket, key)
		}
		return 0, errors.Wrapf(uploads.ErrTransient, "failed to head s3://%s/%s: %v", bucket, key, err)
	}
	if res.ContentLength == nil {
		return 0, errors.Wrapf(uploads.ErrTransient, "no content length for s3://%s/%s", bucket, key)
	}
	return *res.ContentLength, nil
}

func (a *awsRepository) DownloadVideo(ctx context.Context, bucket, key, destDir string) (string, error) {
	res, err := a.client.GetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		},
	)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", errors.Wrapf(uploads.ErrInvalidInput, "video object s3://%s/%s not found", bucket, key)
		}
		return "", errors.Wrapf(uploads.ErrTransient, "failed to download s3://%s/%s: %v", bucket, key, err)
	}
	defer res.Body.Close()

	tmpFile, err := os.CreateTemp(destDir, fmt.Sprintf("upload-*-%s", filepath.Base(key)))
	if err != nil {
		return "", errors.Wrapf(uploads.ErrLocalIO, "failed to create temp video file: %v", err)
	}
	if _, err := io.Copy(tmpFile, res.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", errors.Wrapf(uploads.ErrTransient, "failed to stream s3://%s/%s: %v", bucket, key, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", errors.Wrapf(uploads.ErrLocalIO, "failed to close temp video file: %v", err)
	}
	return tmpFile.Name(), nil
}
