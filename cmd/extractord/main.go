package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/equiplend/invoice-pipeline/internal/archive"
	"github.com/equiplend/invoice-pipeline/internal/async"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/fields"
	"github.com/equiplend/invoice-pipeline/internal/ocr"
	"github.com/equiplend/invoice-pipeline/internal/pipeline"
	"github.com/equiplend/invoice-pipeline/internal/repository"
	"github.com/equiplend/invoice-pipeline/internal/resolver"
	"github.com/equiplend/invoice-pipeline/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	archiver, err := archive.NewDirStore(cfg.Archive.Dir, logger)
	if err != nil {
		logger.Error("init archive", "error", err)
		os.Exit(1)
	}

	proc := pipeline.NewProcessor(
		logger,
		pipeline.Config{MinConfidence: cfg.Pipeline.MinConfidence},
		ocr.NewAcquirer(ocr.Config{
			Tesseract:     cfg.OCR.Tesseract,
			Pdftoppm:      cfg.OCR.Pdftoppm,
			TesseractLang: cfg.OCR.TesseractLang,
			DPI:           cfg.OCR.DPI,
			CallTimeout:   cfg.OCR.CallTimeout,
			TempDir:       cfg.OCR.TempDir,
		}, logger),
		fields.NewExtractor(logger),
		resolver.New(repository.NewEntityStore(db, logger), logger),
		repository.NewInvoiceStore(db, logger),
		archiver,
	)

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.New(proc, queue, logger).Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
