package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"wxwarehouse/internal/api"
	"wxwarehouse/internal/config"
	"wxwarehouse/internal/database"
	"wxwarehouse/internal/events"
	"wxwarehouse/internal/pipeline"
)

func main() {
	stationID := flag.String("station-id", "", "Station ID to process (required)")
	configPath := flag.String("config", "./config.yaml", "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := run(strings.TrimSpace(*stationID), *configPath, *debug); err != nil {
		os.Exit(1)
	}
}

func run(stationID, configPath string, debug bool) error {
	var zapLogger *zap.Logger
	var err error
	if debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize logger: %v\n", err)
		return err
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	if stationID == "" {
		logger.Error("Pipeline failed: -station-id is required")
		return fmt.Errorf("station id is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Errorf("Pipeline failed: %v", err)
		return err
	}
	cfg.ApplyRedisEnv()

	ctx := context.Background()

	db, err := database.NewDB(ctx, config.GetDatabaseDSN())
	if err != nil {
		logger.Errorf("Pipeline failed: %v", err)
		return err
	}
	defer db.Close()

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, cfg.API.UserAgent)
	defer client.Close()

	var publisher *events.Publisher
	if cfg.Redis.Addr != "" {
		publisher = events.NewPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Stream, logger)
		defer publisher.Close()
	}

	logger.Info("Initialized API client and database handler")

	if err := pipeline.New(db, client, publisher, logger).Run(ctx, stationID); err != nil {
		logger.Errorf("Pipeline failed: %v", err)
		return err
	}

	return nil
}
