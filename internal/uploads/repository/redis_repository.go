package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/models"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	"github.com/go-redis/redis/v8"
)

const (
	defaultJobKeyPrefix = "upload:job:"
	defaultResultTTL    = 24 * time.Hour
)

type statusRedisRepo struct {
	redisClient *redis.Client
	jobPrefix   string
	ttl         time.Duration
}

func NewStatusRedisRepo(redisClient *redis.Client, cfg *config.Config) uploads.RedisRepository {
	prefix := cfg.Redis.JobKeyPrefix
	if prefix == "" {
		prefix = defaultJobKeyPrefix
	}
	ttl := defaultResultTTL
	if cfg.Redis.ResultTTL > 0 {
		ttl = time.Duration(cfg.Redis.ResultTTL) * time.Second
	}
	return &statusRedisRepo{
		redisClient: redisClient,
		jobPrefix:   prefix,
		ttl:         ttl,
	}
}

func (s *statusRedisRepo) jobKey(jobID string) string {
	return s.jobPrefix + jobID
}

func (s *statusRedisRepo) resultsKey(runID string) string {
	return s.jobPrefix + "run:" + runID + ":results"
}

func (s *statusRedisRepo) SetJobStatus(ctx context.Context, jobID string, status models.SessionStatus) error {
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, s.jobKey(jobID), "status", string(status), "updated_at", time.Now().Format(time.RFC3339))
	pipe.Expire(ctx, s.jobKey(jobID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (s *statusRedisRepo) SetJobProgress(ctx context.Context, jobID string, uploadedChunks, totalChunks int) error {
	var progress float64
	if totalChunks > 0 {
		progress = float64(uploadedChunks) / float64(totalChunks) * 100
	}
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, s.jobKey(jobID),
		"uploaded_chunks", uploadedChunks,
		"total_chunks", totalChunks,
		"progress", progress,
	)
	pipe.Expire(ctx, s.jobKey(jobID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	return nil
}

func (s *statusRedisRepo) RecordResult(ctx context.Context, runID string, result *models.JobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}
	pipe := s.redisClient.Pipeline()
	pipe.RPush(ctx, s.resultsKey(runID), string(data))
	pipe.Expire(ctx, s.resultsKey(runID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record job result: %w", err)
	}
	return nil
}
