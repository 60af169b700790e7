package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hytech-racing/cars-webserver/internal/config"
	"github.com/hytech-racing/cars-webserver/internal/database"
	handler "github.com/hytech-racing/cars-webserver/internal/delivery/http"
	"github.com/hytech-racing/cars-webserver/internal/logging"
	"github.com/hytech-racing/cars-webserver/internal/s3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("could not load configuration: %s", err)
	}

	zapLogger, err := logging.NewZap(cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not create logger: %s", err)
	}
	logger := logging.NewLogger(zapLogger, logging.DefaultMaxLogs, cfg.CrashLogDir)
	defer logger.Sync()
	defer logger.RecoverAndLogPanic()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One database connection is created here and handed to every handler
	dbClient, err := database.NewDatabaseClient(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		logger.Errorw("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dbClient.Disconnect(disconnectCtx); err != nil {
			logger.Errorw("could not disconnect from database", "error", err)
		}
	}()

	routerOpts := handler.RouterOptions{MaxBodyBytes: cfg.MaxBodyBytes}
	if cfg.ExportEnabled() {
		s3Repository, err := s3.NewS3Session(ctx, cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion, cfg.AwsExportBucket, cfg.AwsS3Endpoint)
		if err != nil {
			logger.Errorw("could not create s3 session", "error", err)
			os.Exit(1)
		}
		routerOpts.SnapshotStore = s3Repository
		logger.Infow("snapshot exports enabled", "bucket", s3Repository.Bucket())
	}

	router := handler.NewRouter(dbClient, logger, routerOpts)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Infow("listening", "addr", server.Addr, "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
}
