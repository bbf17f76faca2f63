package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDF pages, default 300
	CallTimeout   time.Duration
	TempDir       string // "" -> system temp
}

// Acquirer turns a raw document into the single best OCR text. Each run owns
// its own temp dir and image buffers; an Acquirer is safe for concurrent use.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	return &Acquirer{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

type segConfig struct {
	psm    string
	engine entity.EngineConfig
}

// Page-segmentation configurations tried per variant, in order.
var segmentationConfigs = []segConfig{
	{"6", entity.EngineBlock},  // uniform block of text
	{"4", entity.EngineColumn}, // single column of variable sizes
}

const minimalPSM = "3" // fully automatic, used for the last-chance pass

// Acquire runs the full acquisition pass: first page to image, at most two
// image variants, one OCR call per segmentation config per variant, best
// candidate by score. An empty result with score 0 is a valid outcome; the
// only errors returned are decode failures of the input itself.
func (a *Acquirer) Acquire(ctx context.Context, doc entity.RawDocument) (entity.OcrResult, error) {
	empty := entity.OcrResult{EngineConfig: entity.EngineNone}

	format := constants.MapMediaType(doc.MediaType)
	if format == "" {
		return empty, fmt.Errorf("%w: unsupported media type %q", common.ErrDocumentDecode, doc.MediaType)
	}

	tmpDir, err := os.MkdirTemp(a.cfg.TempDir, "lend-ocr-*")
	if err != nil {
		return empty, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			a.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rerr)
		}
	}()

	inputPath := filepath.Join(tmpDir, "input"+inputExt(doc, format))
	if err := os.WriteFile(inputPath, doc.Data, 0o600); err != nil {
		return empty, fmt.Errorf("write input: %w", err)
	}

	imgPath := inputPath
	if format == constants.PDF {
		imgPath, err = a.renderFirstPage(ctx, inputPath, tmpDir)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				a.logger.Warn("pdf renderer unavailable, returning empty result", "error", err)
				return empty, nil
			}
			return empty, fmt.Errorf("%w: %v", common.ErrDocumentDecode, err)
		}
	}

	basePath, lowContrast, err := prepareBase(imgPath, tmpDir)
	if err != nil {
		return empty, fmt.Errorf("%w: %v", common.ErrDocumentDecode, err)
	}

	best := empty
	scan := func(variantPath string) error {
		for _, sc := range segmentationConfigs {
			text, err := a.runTesseract(ctx, variantPath, sc.psm)
			if err != nil {
				return err
			}
			if s := Score(text); s > best.QualityScore {
				best = entity.OcrResult{Text: text, QualityScore: s, EngineConfig: sc.engine}
			}
		}
		return nil
	}

	if err := scan(basePath); err != nil {
		a.logger.Warn("ocr engine unavailable, returning empty result", "error", err)
		return empty, nil
	}
	if lowContrast {
		enhancedPath, eerr := prepareEnhanced(basePath, tmpDir)
		if eerr != nil {
			a.logger.Warn("enhanced variant failed, keeping base candidates", "error", eerr)
		} else if err := scan(enhancedPath); err != nil {
			a.logger.Warn("ocr engine unavailable, returning empty result", "error", err)
			return empty, nil
		}
	}

	if usableLen(best.Text) <= MinUsableTextLen {
		// every config produced a near-empty candidate. A usable minimal-pass
		// recovery wins outright: a short fragment's keyword and digit
		// bonuses must not outvote actual recovered text.
		text, err := a.runTesseract(ctx, basePath, minimalPSM)
		if err == nil && usableLen(text) > MinUsableTextLen {
			best = entity.OcrResult{Text: text, QualityScore: Score(text), EngineConfig: entity.EngineMinimal}
		}
	}
	if usableLen(best.Text) <= MinUsableTextLen {
		a.logger.Info("acquisition produced no usable text", "media_type", doc.MediaType)
		return empty, nil
	}

	a.logger.Debug("acquisition complete",
		"engine_config", best.EngineConfig,
		"quality_score", best.QualityScore,
		"bytes", len(best.Text),
		"low_contrast", lowContrast,
	)
	return best, nil
}

// runTesseract performs one time-bounded engine invocation. A missing binary
// is the only hard error; timeouts and per-config crashes just lose the
// scoring comparison.
func (a *Acquirer) runTesseract(ctx context.Context, imgPath, psm string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	args := []string{imgPath, "stdout", "-l", a.cfg.TesseractLang, "--psm", psm}
	out, errb, err := a.runner.Run(callCtx, a.cfg.Tesseract, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", common.ErrEngineUnavailable
		}
		a.logger.Debug("tesseract attempt failed",
			"psm", psm, "error", err, "stderr", truncate(string(errb), 512))
		return "", nil
	}
	return string(out), nil
}

func usableLen(text string) int {
	return len(strings.TrimSpace(text))
}

func inputExt(doc entity.RawDocument, format constants.Format) string {
	if ext := constants.NormalizeExt(filepath.Ext(doc.Filename)); ext != "" {
		return "." + ext
	}
	if format == constants.PDF {
		return ".pdf"
	}
	return ".png"
}
