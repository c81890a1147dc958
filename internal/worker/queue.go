package worker

import (
	"context"
	"encoding/json"
	"os"

	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/creatorstack/tiktok-uploader/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LoadQueue reads the queue file: a JSON array of upload jobs. Every record
// is validated here so a malformed entry is rejected before any network
// activity, with the offending index in the error. Jobs without an id get
// one assigned.
func LoadQueue(ctx context.Context, path string) ([]*models.UploadJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "queue file %s: %v", path, err)
	}

	var jobs []*models.UploadJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "queue file %s is not a json array of jobs: %v", path, err)
	}
	if len(jobs) == 0 {
		return nil, errors.Wrapf(uploads.ErrInvalidInput, "queue file %s holds no jobs", path)
	}

	for i, job := range jobs {
		if job == nil {
			return nil, errors.Wrapf(uploads.ErrInvalidInput, "queue entry %d is null", i)
		}
		if err := utils.ValidateStruct(ctx, job); err != nil {
			return nil, errors.Wrapf(uploads.ErrInvalidInput, "queue entry %d (user_id=%q): %v", i, job.UserID, err)
		}
		if job.JobID == "" {
			job.JobID = uuid.New().String()
		}
	}
	return jobs, nil
}
