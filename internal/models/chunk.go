package models

import "fmt"

// Chunk is one contiguous byte range of the video file. Start and End are
// inclusive offsets, matching the Content-Range header sent on upload.
type Chunk struct {
	Index int   `json:"index"`
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Size  int64 `json:"size"`
}

func (c Chunk) ContentRange(totalSize int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End, totalSize)
}

// ChunkPlan is the ordered list of ranges covering the whole file.
type ChunkPlan []Chunk

func (p ChunkPlan) TotalSize() int64 {
	var total int64
	for _, c := range p {
		total += c.Size
	}
	return total
}

// Validate checks the plan covers [0, totalSize) contiguously with no gaps
// or overlaps.
func (p ChunkPlan) Validate(totalSize int64) error {
	if len(p) == 0 {
		return fmt.Errorf("empty chunk plan")
	}
	var next int64
	for i, c := range p {
		if c.Index != i {
			return fmt.Errorf("chunk %d: index %d out of order", i, c.Index)
		}
		if c.Start != next {
			return fmt.Errorf("chunk %d: starts at %d, expected %d", i, c.Start, next)
		}
		if c.Size <= 0 || c.End != c.Start+c.Size-1 {
			return fmt.Errorf("chunk %d: inconsistent range %d-%d size %d", i, c.Start, c.End, c.Size)
		}
		next = c.End + 1
	}
	if next != totalSize {
		return fmt.Errorf("plan covers %d bytes, file has %d", next, totalSize)
	}
	return nil
}
