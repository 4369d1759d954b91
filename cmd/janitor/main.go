package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/eidan66/wedding-album-sub000/config"
	"github.com/eidan66/wedding-album-sub000/internal/services"
	"github.com/eidan66/wedding-album-sub000/internal/storage"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"
)

const usage = `
Wedding Album - Multipart Janitor

Reclaims multipart upload sessions that were opened but never completed or
aborted, so the storage backend does not accumulate orphaned parts.

Usage:
  janitor [flags]

Flags:
  -once            Run a single sweep and exit (default: run on an interval)
  -max-age string  Age before a session counts as abandoned (default from JANITOR_MAX_AGE_MIN)
  -interval string Sweep interval (default from JANITOR_INTERVAL_MIN)

Examples:
  go run cmd/janitor/main.go -once
  go run cmd/janitor/main.go -interval 30m
`

func main() {
	once := flag.Bool("once", false, "Run a single sweep and exit")
	maxAgeFlag := flag.String("max-age", "", "Age before a session counts as abandoned")
	intervalFlag := flag.String("interval", "", "Sweep interval")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	cfg := config.LoadConfig()
	l := logger.New(logger.DevelopmentMode)
	defer func() {
		_ = l.Logger.Sync()
	}()

	maxAge := time.Duration(cfg.JanitorMaxAgeMin) * time.Minute
	if *maxAgeFlag != "" {
		d, err := time.ParseDuration(*maxAgeFlag)
		if err != nil {
			log.Fatalf("Invalid -max-age: %v", err)
		}
		maxAge = d
	}
	interval := time.Duration(cfg.JanitorIntervalMin) * time.Minute
	if *intervalFlag != "" {
		d, err := time.ParseDuration(*intervalFlag)
		if err != nil {
			log.Fatalf("Invalid -interval: %v", err)
		}
		interval = d
	}

	ctx := context.Background()

	store, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
	})
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	janitor := services.NewJanitorService(store, cfg.UploadPrefix, maxAge, l)

	if *once {
		aborted, err := janitor.SweepOnce(ctx)
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		l.Infof("sweep complete: %d sessions reclaimed", aborted)
		os.Exit(0)
	}

	l.Infof("janitor running: max-age=%s interval=%s prefix=%s", maxAge, interval, cfg.UploadPrefix)
	janitor.Run(ctx, interval)
}
