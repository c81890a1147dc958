package usecase

import (
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/pkg/errors"
)

// PlanChunks splits totalSize bytes into the byte ranges one upload session
// will transfer. Every chunk except the last is exactly the nominal chunk
// size; a tail smaller than the minimum is folded into the chunk before it;
// a file smaller than the minimum travels as its single chunk.
func PlanChunks(totalSize int64, c models.UploadConstraints) (models.ChunkPlan, error) {
	if totalSize <= 0 {
		return nil, errors.Wrap(uploads.ErrInvalidInput, "video size must be positive")
	}
	if c.MinChunkSize <= 0 || c.MaxChunkSize < c.MinChunkSize || c.MaxChunkCount <= 0 {
		return nil, errors.Wrapf(uploads.ErrInvalidInput,
			"unusable chunk constraints min=%d max=%d count=%d", c.MinChunkSize, c.MaxChunkSize, c.MaxChunkCount)
	}
	if totalSize > c.MaxChunkSize*int64(c.MaxChunkCount) {
		return nil, errors.Wrapf(uploads.ErrConstraints,
			"%d bytes cannot be covered by %d chunks of at most %d bytes", totalSize, c.MaxChunkCount, c.MaxChunkSize)
	}

	chunkSize := c.MaxChunkSize
	if totalSize < chunkSize {
		chunkSize = totalSize
	}

	count := totalSize / chunkSize
	remainder := totalSize % chunkSize

	plan := make(models.ChunkPlan, 0, count+1)
	var start int64
	for i := int64(0); i < count; i++ {
		size := chunkSize
		if i == count-1 && remainder > 0 && remainder < c.MinChunkSize {
			size += remainder
			remainder = 0
		}
		plan = append(plan, models.Chunk{
			Index: int(i),
			Start: start,
			End:   start + size - 1,
			Size:  size,
		})
		start += size
	}
	if remainder > 0 {
		plan = append(plan, models.Chunk{
			Index: len(plan),
			Start: start,
			End:   start + remainder - 1,
			Size:  remainder,
		})
	}
	return plan, nil
}
