package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaption(t *testing.T) {
	tests := []struct {
		name string
		job  UploadJob
		want string
	}{
		{
			name: "description with tags",
			job:  UploadJob{Description: "sunset run", Tags: []string{"running", "goldenhour"}},
			want: "sunset run #running #goldenhour",
		},
		{
			name: "tags already carrying the hash",
			job:  UploadJob{Description: "clip", Tags: []string{"#fyp"}},
			want: "clip #fyp",
		},
		{
			name: "tags only",
			job:  UploadJob{Tags: []string{"golang"}},
			want: "#golang",
		},
		{
			name: "blank tags are dropped",
			job:  UploadJob{Description: "clip", Tags: []string{"", "  ", "ok"}},
			want: "clip #ok",
		},
		{
			name: "no caption at all",
			job:  UploadJob{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.Caption())
		})
	}
}

func TestJobResultSucceeded(t *testing.T) {
	assert.True(t, (&JobResult{Outcome: JobOutcomeSuccess}).Succeeded())
	assert.False(t, (&JobResult{Outcome: JobOutcomeFailed}).Succeeded())
}
