package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	authRepository "github.com/creatorstack/tiktok-uploader/internal/auth/repository"
	authUsecase "github.com/creatorstack/tiktok-uploader/internal/auth/usecase"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/uploads"
	uploadsRepository "github.com/creatorstack/tiktok-uploader/internal/uploads/repository"
	uploadsUsecase "github.com/creatorstack/tiktok-uploader/internal/uploads/usecase"
	"github.com/creatorstack/tiktok-uploader/internal/worker"
	"github.com/creatorstack/tiktok-uploader/pkg/db/aws"
	"github.com/creatorstack/tiktok-uploader/pkg/db/postgres"
	clientRedis "github.com/creatorstack/tiktok-uploader/pkg/db/redis"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

const defaultQueueFile = "videos_to_upload.json"

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	queueFile := flag.String("queue", "", "path to the upload queue file (overrides config)")
	runID := flag.String("run-id", "", "identifier for this run (default: random)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfgFile, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	queuePath := *queueFile
	if queuePath == "" {
		queuePath = cfg.Uploader.QueueFile
	}
	if queuePath == "" {
		queuePath = defaultQueueFile
	}

	id := *runID
	if id == "" {
		id = uuid.New().String()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Warn("interrupt received, stopping after current operation")
		cancel()
	}()

	var psqlDB *sqlx.DB
	if cfg.TokenStore.Backend == authRepository.BackendPostgres {
		psqlDB, err = postgres.NewPsqlDB(cfg)
		if err != nil {
			appLogger.Fatalf("could not connect to db: %s", err)
		}
		appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
		defer psqlDB.Close()
	}
	tokenRepo, err := authRepository.NewTokenRepository(cfg, psqlDB)
	if err != nil {
		appLogger.Fatalf("token store: %s", err)
	}
	oauthRepo := authRepository.NewOAuthRepo(cfg)
	authUC := authUsecase.NewAuthUseCase(cfg, tokenRepo, oauthRepo, appLogger)

	tiktokRepo := uploadsRepository.NewTikTokRepository(cfg)
	uploadUC := uploadsUsecase.NewUploadUseCase(cfg, tiktokRepo, appLogger)

	var awsRepo uploads.AWSRepository
	if cfg.S3.Region != "" || cfg.S3.Endpoint != "" {
		s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %s", err)
		}
		awsRepo = uploadsRepository.NewAwsRepository(s3Client)
	}

	var statusRepo uploads.RedisRepository
	if cfg.Redis.RedisAddr != "" {
		redisClient, err := clientRedis.NewRedisClient(cfg)
		if err != nil {
			appLogger.Warnf("could not connect to redis, continuing without status sink: %s", err)
		} else {
			defer redisClient.Close()
			appLogger.Infof("redis connected")
			statusRepo = uploadsRepository.NewStatusRedisRepo(redisClient, cfg)
		}
	}

	jobs, err := worker.LoadQueue(ctx, queuePath)
	if err != nil {
		appLogger.Fatalf("could not load queue: %s", err)
	}

	driver := worker.NewDriver(cfg, appLogger, authUC, uploadUC, awsRepo, statusRepo, id)
	results := driver.Run(ctx, jobs)

	failed := 0
	for _, r := range results {
		if r.Succeeded() {
			fmt.Printf("ok   %s %s publish_id=%s\n", r.JobID, r.VideoPath, r.PublishID)
		} else {
			failed++
			fmt.Printf("FAIL %s %s reason=%s %s\n", r.JobID, r.VideoPath, r.Reason, r.Message)
		}
	}
	fmt.Printf("%d/%d jobs succeeded (run %s)\n", len(results)-failed, len(results), id)
	if failed > 0 {
		os.Exit(1)
	}
}
