package usecase

import (
	"testing"

	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = int64(1024 * 1024)

func constraints(min, max int64, count int) models.UploadConstraints {
	return models.UploadConstraints{MinChunkSize: min, MaxChunkSize: max, MaxChunkCount: count}
}

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name      string
		totalSize int64
		c         models.UploadConstraints
		wantSizes []int64
	}{
		{
			name:      "50MB file fits one chunk",
			totalSize: 50 * mib,
			c:         constraints(5*mib, 64*mib, 1000),
			wantSizes: []int64{50 * mib},
		},
		{
			name:      "200MB file splits into full chunks plus tail",
			totalSize: 200 * mib,
			c:         constraints(5*mib, 64*mib, 10),
			wantSizes: []int64{64 * mib, 64 * mib, 64 * mib, 8 * mib},
		},
		{
			name:      "tail below minimum merges into previous chunk",
			totalSize: 130 * mib,
			c:         constraints(5*mib, 64*mib, 1000),
			wantSizes: []int64{64 * mib, 66 * mib},
		},
		{
			name:      "file below minimum travels whole",
			totalSize: 3 * mib,
			c:         constraints(5*mib, 64*mib, 1000),
			wantSizes: []int64{3 * mib},
		},
		{
			name:      "exact multiple has no tail",
			totalSize: 128 * mib,
			c:         constraints(5*mib, 64*mib, 1000),
			wantSizes: []int64{64 * mib, 64 * mib},
		},
		{
			name:      "single byte file",
			totalSize: 1,
			c:         constraints(5*mib, 64*mib, 1000),
			wantSizes: []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanChunks(tt.totalSize, tt.c)
			require.NoError(t, err)
			require.NoError(t, plan.Validate(tt.totalSize))

			sizes := make([]int64, 0, len(plan))
			for _, chunk := range plan {
				sizes = append(sizes, chunk.Size)
			}
			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, tt.totalSize, plan.TotalSize())
			assert.LessOrEqual(t, len(plan), tt.c.MaxChunkCount)

			// Every chunk but the last stays within the configured bounds;
			// the last may only undercut the minimum when it stands alone.
			for i, chunk := range plan {
				if i < len(plan)-1 {
					assert.GreaterOrEqual(t, chunk.Size, tt.c.MinChunkSize, "chunk %d", i)
					assert.LessOrEqual(t, chunk.Size, tt.c.MaxChunkSize, "chunk %d", i)
				} else if len(plan) > 1 {
					assert.GreaterOrEqual(t, chunk.Size, tt.c.MinChunkSize, "final chunk")
				}
			}
		})
	}
}

func TestPlanChunksDeterministic(t *testing.T) {
	c := constraints(5*mib, 64*mib, 1000)
	first, err := PlanChunks(200*mib, c)
	require.NoError(t, err)
	second, err := PlanChunks(200*mib, c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPlanChunksRejectsEmptyFile(t *testing.T) {
	_, err := PlanChunks(0, constraints(5*mib, 64*mib, 1000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrInvalidInput))
}

func TestPlanChunksRejectsUncoverableSize(t *testing.T) {
	_, err := PlanChunks(65*mib, constraints(1*mib, 1*mib, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrConstraints))
}

func TestPlanChunksRejectsBrokenConstraints(t *testing.T) {
	_, err := PlanChunks(10*mib, constraints(64*mib, 5*mib, 1000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, uploads.ErrInvalidInput))
}
