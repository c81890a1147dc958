package main

import (
	"flag"
	"log"

	authRepository "github.com/creatorstack/tiktok-uploader/internal/auth/repository"
	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/creatorstack/tiktok-uploader/internal/server"
	"github.com/creatorstack/tiktok-uploader/pkg/db/postgres"
	"github.com/creatorstack/tiktok-uploader/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting OAuth server")

	configFile := flag.String("config", "config.yml", "path to config file")
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

	var psqlDB *sqlx.DB
	if cfg.TokenStore.Backend == authRepository.BackendPostgres {
		psqlDB, err = postgres.NewPsqlDB(cfg)
		if err != nil {
			appLogger.Fatalf("could not connect to db: %s", err)
		}
		appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
		defer psqlDB.Close()
	}

	s := server.NewServer(cfg, psqlDB, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Fatalf("could not start server: %s", err)
	}
}
