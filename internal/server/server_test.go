package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/async"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
	"github.com/equiplend/invoice-pipeline/internal/pipeline"
	"github.com/equiplend/invoice-pipeline/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAcquirer struct {
	res entity.OcrResult
	err error
}

func (s *stubAcquirer) Acquire(context.Context, entity.RawDocument) (entity.OcrResult, error) {
	return s.res, s.err
}

type stubExtractor struct{}

func (stubExtractor) Extract(entity.OcrResult) entity.ExtractedInvoice {
	return entity.ExtractedInvoice{
		BorrowerName:    "Alice Johnson",
		Items:           []entity.LineItem{},
		ConfidenceScore: 50,
	}
}

type stubResolver struct {
	err error
}

func (s *stubResolver) Resolve(_ context.Context, kind constants.EntityKind, _, _, _ string) (entity.EntityRef, error) {
	if s.err != nil {
		return entity.EntityRef{}, s.err
	}
	return entity.EntityRef{Kind: kind, ID: uuid.New(), ExternalID: "STU20251234"}, nil
}

type stubInvoices struct {
	err error
}

func (s *stubInvoices) SaveInvoice(context.Context, *repository.SaveInvoiceRequest) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return uuid.New(), nil
}

type stubQueue struct {
	jobs []async.Job
}

func (q *stubQueue) Enqueue(_ context.Context, job async.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Shutdown(context.Context) {}

type serverDeps struct {
	acquirer *stubAcquirer
	resolver *stubResolver
	invoices *stubInvoices
	queue    *stubQueue
}

func newTestServer() (*gin.Engine, *serverDeps) {
	deps := &serverDeps{
		acquirer: &stubAcquirer{res: entity.OcrResult{
			Text: "scanned", QualityScore: 60, EngineConfig: entity.EngineBlock,
		}},
		resolver: &stubResolver{},
		invoices: &stubInvoices{},
		queue:    &stubQueue{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := pipeline.NewProcessor(logger, pipeline.Config{MinConfidence: 40},
		deps.acquirer, stubExtractor{}, deps.resolver, deps.invoices, nil)
	return New(proc, deps.queue, logger).Router(), deps
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProcessRawBody(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/process",
		bytes.NewReader([]byte("fake image bytes")))
	req.Header.Set("Content-Type", "image/png")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEqual(t, uuid.Nil, res.InvoiceID)
	require.Equal(t, constants.MethodImageOCR, res.Method)
}

func TestProcessMultipartUpload(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("document", "scan.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("media_type", "image/png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/process", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProcessEmptyBody(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/process", nil)
	req.Header.Set("Content-Type", "image/png")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(deps *serverDeps)
		want    int
	}{
		{
			name: "decode failure is a client error",
			prepare: func(deps *serverDeps) {
				deps.acquirer.err = common.WrapError(common.ErrDocumentDecode, "bad bytes")
			},
			want: http.StatusBadRequest,
		},
		{
			name: "resolution failure is unprocessable",
			prepare: func(deps *serverDeps) {
				deps.resolver.err = common.WrapError(common.ErrEntityResolution, "no clues")
			},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "persistence failure is a bad gateway",
			prepare: func(deps *serverDeps) {
				deps.invoices.err = common.WrapError(common.ErrPersistence, "connection refused")
			},
			want: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, deps := newTestServer()
			tt.prepare(deps)

			req := httptest.NewRequest(http.MethodPost, "/v1/documents/process",
				bytes.NewReader([]byte("fake image bytes")))
			req.Header.Set("Content-Type", "image/png")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestEnqueueAccepted(t *testing.T) {
	t.Parallel()

	router, deps := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/enqueue",
		bytes.NewReader([]byte("fake image bytes")))
	req.Header.Set("Content-Type", "image/png")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, deps.queue.jobs, 1)
	job := deps.queue.jobs[0]
	require.Equal(t, []byte("fake image bytes"), job.Document.Data)
	require.Equal(t, "image/png", job.Document.MediaType)
	require.NotEmpty(t, job.TraceID)
	require.False(t, job.SubmittedAt.IsZero())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "queued", body["status"])
	require.Equal(t, job.TraceID, body["trace_id"])
}
