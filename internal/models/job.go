package models

import (
	"strings"
	"time"
)

type JobOutcome string

const (
	JobOutcomeSuccess JobOutcome = "success"
	JobOutcomeFailed  JobOutcome = "failed"
)

// UploadJob is one entry of the upload queue file: a local or S3 video plus
// the post metadata it should be published with.
type UploadJob struct {
	JobID        string   `json:"job_id" redis:"job_id" validate:"omitempty"`
	UserID       string   `json:"user_id" redis:"user_id" validate:"required"`
	VideoPath    string   `json:"video_path" redis:"video_path" validate:"required"`
	Description  string   `json:"description" redis:"description" validate:"omitempty,lte=2200"`
	Tags         []string `json:"tags" redis:"tags" validate:"omitempty,dive,required"`
	PrivacyLevel string   `json:"privacy_level" redis:"privacy_level" validate:"omitempty,oneof=PUBLIC_TO_EVERYONE MUTUAL_FOLLOW_FRIENDS FOLLOWER_OF_CREATOR SELF_ONLY"`
}

// Caption renders the post title: the description followed by the hashtags.
func (j *UploadJob) Caption() string {
	parts := make([]string, 0, len(j.Tags)+1)
	if j.Description != "" {
		parts = append(parts, j.Description)
	}
	for _, tag := range j.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		parts = append(parts, tag)
	}
	return strings.Join(parts, " ")
}

// JobResult records how one queue entry ended. Exactly one is produced per
// job, in queue order, regardless of how other jobs in the run fared.
type JobResult struct {
	JobID      string     `json:"job_id" redis:"job_id"`
	UserID     string     `json:"user_id" redis:"user_id"`
	VideoPath  string     `json:"video_path" redis:"video_path"`
	Outcome    JobOutcome `json:"outcome" redis:"outcome"`
	Reason     string     `json:"reason,omitempty" redis:"reason"`
	Message    string     `json:"message,omitempty" redis:"message"`
	PublishID  string     `json:"publish_id,omitempty" redis:"publish_id"`
	StartedAt  time.Time  `json:"started_at" redis:"started_at"`
	FinishedAt time.Time  `json:"finished_at" redis:"finished_at"`
}

func (r *JobResult) Succeeded() bool {
	return r.Outcome == JobOutcomeSuccess
}
