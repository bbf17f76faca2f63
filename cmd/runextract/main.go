package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/archive"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
	"github.com/equiplend/invoice-pipeline/internal/fields"
	"github.com/equiplend/invoice-pipeline/internal/ocr"
	"github.com/equiplend/invoice-pipeline/internal/pipeline"
	"github.com/equiplend/invoice-pipeline/internal/repository"
	"github.com/equiplend/invoice-pipeline/internal/resolver"
)

// runextract pushes one local file through the full pipeline and prints the
// assembled result as JSON. Useful for smoke-testing new invoice layouts.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <path-to-document>")
		os.Exit(2)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read document", "path", path, "error", err)
		os.Exit(1)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	mediaType, ok := constants.ExtToMediaType[ext]
	if !ok {
		logger.Error("unsupported file extension", "ext", ext)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

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

	start := time.Now()
	res, err := proc.Process(ctx, entity.RawDocument{
		Data:      data,
		MediaType: mediaType,
		Filename:  filepath.Base(path),
	})
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"invoice_id", res.InvoiceID,
		"method", res.Method,
		"confidence", res.Extracted.ConfidenceScore,
		"needs_review", res.NeedsReview,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
