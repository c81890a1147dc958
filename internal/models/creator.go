package models

// CreatorInfo is the creator_info/query response: posting defaults and
// restrictions for the authorized account.
type CreatorInfo struct {
	Nickname                string   `json:"creator_nickname"`
	Username                string   `json:"creator_username"`
	AvatarURL               string   `json:"creator_avatar_url"`
	PrivacyLevelOptions     []string `json:"privacy_level_options"`
	CommentDisabled         bool     `json:"comment_disabled"`
	DuetDisabled            bool     `json:"duet_disabled"`
	StitchDisabled          bool     `json:"stitch_disabled"`
	MaxVideoPostDurationSec int      `json:"max_video_post_duration_sec"`
}

const PrivacySelfOnly = "SELF_ONLY"

// DefaultPrivacyLevel picks the most permissive level the account offers,
// falling back to a private post when the platform returns none.
func (c *CreatorInfo) DefaultPrivacyLevel() string {
	if len(c.PrivacyLevelOptions) == 0 {
		return PrivacySelfOnly
	}
	return c.PrivacyLevelOptions[len(c.PrivacyLevelOptions)-1]
}

// UploadConstraints bound what a single chunked upload may look like.
type UploadConstraints struct {
	MinChunkSize  int64 `json:"min_chunk_size"`
	MaxChunkSize  int64 `json:"max_chunk_size"`
	MaxChunkCount int   `json:"max_chunk_count"`
}

const (
	DefaultMinChunkSize  int64 = 5 * 1024 * 1024
	DefaultMaxChunkSize  int64 = 64 * 1024 * 1024
	DefaultMaxChunkCount       = 1000
)

// DefaultUploadConstraints returns the platform's documented chunk bounds.
func DefaultUploadConstraints() UploadConstraints {
	return UploadConstraints{
		MinChunkSize:  DefaultMinChunkSize,
		MaxChunkSize:  DefaultMaxChunkSize,
		MaxChunkCount: DefaultMaxChunkCount,
	}
}
