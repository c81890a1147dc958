package models

type SessionStatus string

const (
	SessionStatusInitialized SessionStatus = "INITIALIZED"
	SessionStatusUploading   SessionStatus = "UPLOADING"
	SessionStatusProcessing  SessionStatus = "PROCESSING"
	SessionStatusPublished   SessionStatus = "PUBLISHED"
	SessionStatusFailed      SessionStatus = "FAILED"
)

// UploadSession tracks one video's journey through the Direct Post API,
// from init response to terminal publish status.
type UploadSession struct {
	PublishID  string        `json:"publish_id" redis:"publish_id"`
	UploadURL  string        `json:"upload_url" redis:"upload_url"`
	VideoSize  int64         `json:"video_size" redis:"video_size"`
	ChunkSize  int64         `json:"chunk_size" redis:"chunk_size"`
	ChunkCount int           `json:"chunk_count" redis:"chunk_count"`
	Status     SessionStatus `json:"status" redis:"status"`
	FailReason string        `json:"fail_reason,omitempty" redis:"fail_reason"`
}

// PostInfo and SourceInfo mirror the init request body field for field.
type PostInfo struct {
	Title                 string `json:"title"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableDuet           bool   `json:"disable_duet"`
	DisableComment        bool   `json:"disable_comment"`
	DisableStitch         bool   `json:"disable_stitch"`
	BrandContentToggle    bool   `json:"brand_content_toggle"`
	BrandOrganicToggle    bool   `json:"brand_organic_toggle"`
	IsAIGC                bool   `json:"is_aigc"`
	VideoCoverTimestampMs int64  `json:"video_cover_timestamp_ms,omitempty"`
}

const SourceFileUpload = "FILE_UPLOAD"

type SourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int64  `json:"video_size"`
	ChunkSize       int64  `json:"chunk_size"`
	TotalChunkCount int    `json:"total_chunk_count"`
}

type InitUploadRequest struct {
	PostInfo   PostInfo   `json:"post_info"`
	SourceInfo SourceInfo `json:"source_info"`
}

const (
	PublishStatusProcessingUpload   = "PROCESSING_UPLOAD"
	PublishStatusProcessingDownload = "PROCESSING_DOWNLOAD"
	PublishStatusComplete           = "PUBLISH_COMPLETE"
	PublishStatusFailed             = "FAILED"
)

// PublishStatus is the status/fetch response payload. The misspelled post id
// field is verbatim from the platform.
type PublishStatus struct {
	Status        string  `json:"status"`
	FailReason    string  `json:"fail_reason"`
	PublicPostIDs []int64 `json:"publicaly_available_post_id"`
	UploadedBytes int64   `json:"uploaded_bytes"`
}

func (s *PublishStatus) Terminal() bool {
	return s.Status == PublishStatusComplete || s.Status == PublishStatusFailed
}
