package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// fakeRunner serves canned tesseract output keyed by the --psm argument.
type fakeRunner struct {
	textByPSM map[string]string
	err       error
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	psm := args[len(args)-1]
	f.calls = append(f.calls, psm)
	if f.err != nil {
		return nil, nil, f.err
	}
	return []byte(f.textByPSM[psm]), nil, nil
}

func testAcquirer(runner Runner) *Acquirer {
	a := NewAcquirer(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.runner = runner
	return a
}

// pngBytes renders a high-contrast synthetic scan so only the base variant
// is OCRed.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x < 60 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngDocument(t *testing.T) entity.RawDocument {
	t.Helper()
	return entity.RawDocument{Data: pngBytes(t), MediaType: "image/png", Filename: "scan.png"}
}

func TestAcquireKeepsBestCandidate(t *testing.T) {
	t.Parallel()

	blockText := "EQUIPMENT LENDING INVOICE\nStudent ID: STU20251234\nDue Date: 2025-09-30"
	runner := &fakeRunner{textByPSM: map[string]string{
		"6": blockText,
		"4": "short scan 1",
	}}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, blockText, res.Text)
	require.Equal(t, entity.EngineBlock, res.EngineConfig)
	require.Equal(t, Score(blockText), res.QualityScore)
	require.Equal(t, []string{"6", "4"}, runner.calls)
}

func TestAcquireTieKeepsFirstConfig(t *testing.T) {
	t.Parallel()

	same := "identical candidate text with invoice 123"
	runner := &fakeRunner{textByPSM: map[string]string{"6": same, "4": same}}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, entity.EngineBlock, res.EngineConfig)
}

func TestAcquireMinimalFallback(t *testing.T) {
	t.Parallel()

	usable := "recovered by the minimal pass: invoice 42 items listed below"
	runner := &fakeRunner{textByPSM: map[string]string{
		"6": "junk",
		"4": "",
		"3": usable,
	}}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, usable, res.Text)
	require.Equal(t, entity.EngineMinimal, res.EngineConfig)
}

func TestAcquireMinimalPassOvercomesFragmentBonuses(t *testing.T) {
	t.Parallel()

	// "qty 1" is near-empty but its keyword and digit bonuses outscore the
	// plain-prose recovery; the minimal pass must still win.
	prose := "Handed over all the goods at the main office desk"
	runner := &fakeRunner{textByPSM: map[string]string{
		"6": "qty 1",
		"4": "qty 1",
		"3": prose,
	}}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, prose, res.Text)
	require.Equal(t, entity.EngineMinimal, res.EngineConfig)
	require.Equal(t, Score(prose), res.QualityScore)
}

func TestAcquireEngineMissingDegrades(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: exec.ErrNotFound}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, entity.OcrResult{EngineConfig: entity.EngineNone}, res)
}

func TestAcquireAllAttemptsFailDegrades(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("tesseract crashed")}

	res, err := testAcquirer(runner).Acquire(context.Background(), pngDocument(t))
	require.NoError(t, err)
	require.Equal(t, entity.EngineNone, res.EngineConfig)
	require.Zero(t, res.QualityScore)
}

// pdfRunner plays both binaries: pdftoppm calls drop a rendered page next
// to the requested prefix, tesseract calls return canned text. It records
// whether each invocation carried a deadline.
type pdfRunner struct {
	pageData     []byte
	deadlineSeen []bool
}

func (r *pdfRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	_, hasDeadline := ctx.Deadline()
	r.deadlineSeen = append(r.deadlineSeen, hasDeadline)

	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.png", r.pageData, 0o600); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}
	return []byte("recovered invoice text 123 from the rendered page"), nil, nil
}

func TestAcquirePDFEveryCallTimeBounded(t *testing.T) {
	t.Parallel()

	runner := &pdfRunner{pageData: pngBytes(t)}
	doc := entity.RawDocument{
		Data: []byte("%PDF-1.4 fake"), MediaType: "application/pdf", Filename: "invoice.pdf",
	}

	res, err := testAcquirer(runner).Acquire(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, "recovered invoice text 123 from the rendered page", res.Text)

	require.NotEmpty(t, runner.deadlineSeen)
	for i, hasDeadline := range runner.deadlineSeen {
		require.True(t, hasDeadline, "call %d ran without a deadline", i)
	}
}

func TestAcquireUnsupportedMediaType(t *testing.T) {
	t.Parallel()

	doc := entity.RawDocument{Data: []byte("x"), MediaType: "application/zip"}
	_, err := testAcquirer(&fakeRunner{}).Acquire(context.Background(), doc)
	require.ErrorIs(t, err, common.ErrDocumentDecode)
}

func TestAcquireCorruptImage(t *testing.T) {
	t.Parallel()

	doc := entity.RawDocument{Data: []byte("not an image"), MediaType: "image/png"}
	_, err := testAcquirer(&fakeRunner{}).Acquire(context.Background(), doc)
	require.ErrorIs(t, err, common.ErrDocumentDecode)
}
