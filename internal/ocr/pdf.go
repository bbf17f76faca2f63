package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/equiplend/invoice-pipeline/internal/common"
)

// renderFirstPage rasterizes page 1 of a PDF to a PNG under tmpDir. Later
// pages are never rendered; lending invoices are single-page documents and
// trailing pages are terms boilerplate.
func (a *Acquirer) renderFirstPage(ctx context.Context, pdfPath, tmpDir string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f 1 -l 1 -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := a.runner.Run(callCtx, a.cfg.Pdftoppm,
		"-f", "1", "-l", "1", "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %s: %w", truncate(string(errb), 512), err)
	}

	matches, _ := filepath.Glob(prefix + "*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", common.WrapError(common.ErrDocumentDecode, "pdftoppm produced no pages")
	}
	return matches[0], nil
}
