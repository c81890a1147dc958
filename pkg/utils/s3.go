package utils

import (
	"fmt"
	"strings"
)

// ParseS3URI splits an s3://bucket/key reference into bucket and key.
func ParseS3URI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %s", uri)
	}
	return bucket, key, nil
}

// IsS3URI reports whether a job's video path points at an object store
// location rather than a local file.
func IsS3URI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}
