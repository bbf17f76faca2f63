package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equiplend/invoice-pipeline/internal/async"
	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
	"github.com/equiplend/invoice-pipeline/internal/pipeline"
)

// maxDocumentBytes bounds uploads; scans above this are misconfigured
// scanner output, not invoices.
const maxDocumentBytes = 32 << 20

// Server is the document ingress: one synchronous extraction endpoint, one
// fire-and-forget enqueue endpoint, and a health probe.
type Server struct {
	proc   *pipeline.Processor
	queue  async.Queue
	logger *slog.Logger
}

func New(proc *pipeline.Processor, queue async.Queue, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, queue: queue, logger: logger}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxDocumentBytes

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/documents/process", s.processDocument)
	v1.POST("/documents/enqueue", s.enqueueDocument)
	return r
}

func (s *Server) processDocument(c *gin.Context) {
	doc, err := readDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.proc.Process(c.Request.Context(), doc)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, common.ErrDocumentDecode):
			status = http.StatusBadRequest
		case errors.Is(err, common.ErrEntityResolution):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, common.ErrPersistence):
			status = http.StatusBadGateway
		}
		s.logger.Error("process request failed", "status", status, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) enqueueDocument(c *gin.Context) {
	doc, err := readDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	traceID := uuid.New().String()
	if err := s.queue.Enqueue(c.Request.Context(), async.Job{
		Document:    doc,
		SubmittedAt: time.Now().UTC(),
		TraceID:     traceID,
	}); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "trace_id": traceID})
}

// readDocument accepts either a multipart upload under "document" or the
// raw request body with its declared Content-Type.
func readDocument(c *gin.Context) (entity.RawDocument, error) {
	if fh, err := c.FormFile("document"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return entity.RawDocument{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
		if err != nil {
			return entity.RawDocument{}, err
		}
		mediaType := c.PostForm("media_type")
		if mediaType == "" {
			mediaType = fh.Header.Get("Content-Type")
		}
		return entity.RawDocument{Data: data, MediaType: mediaType, Filename: fh.Filename}, nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes))
	if err != nil {
		return entity.RawDocument{}, err
	}
	if len(data) == 0 {
		return entity.RawDocument{}, common.WrapError(common.ErrInvalidInput, "empty document body")
	}
	return entity.RawDocument{Data: data, MediaType: c.ContentType()}, nil
}
