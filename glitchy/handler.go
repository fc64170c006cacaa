package glitchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Handler serves a payload with truncated bodies.
type Handler struct {
	payload      []byte
	maxChunk     int
	glitchRanges bool
	logger       *slog.Logger
	tracer       trace.Tracer

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler creates a Handler for payload. Range responses are truncated
// and the truncation sequence is random unless overridden via options.
func NewHandler(payload []byte, optFns ...Option) *Handler {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}

	h := &Handler{
		payload:      payload,
		maxChunk:     opts.maxChunk,
		glitchRanges: true,
		logger:       slog.Default(),
		tracer:       noop.NewTracerProvider().Tracer("no-op tracer"),
	}

	seed := rand.Uint64()
	if opts.seed != nil {
		seed = *opts.seed
	}
	h.rng = rand.New(rand.NewPCG(seed, seed>>1|1))

	if opts.glitchRanges != nil {
		h.glitchRanges = *opts.glitchRanges
	}
	if opts.logger != nil {
		h.logger = opts.logger
	}
	if opts.tracer != nil {
		h.tracer = opts.tracer
	}

	return h
}

// exchange records what one request was answered with.
type exchange struct {
	status   int
	declared int
	written  int
}

// ServeHTTP starts a span, resolves a trace ID and serves the request,
// recovering from panics.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "glitchy.serve")
	defer span.End()
	span.SetAttributes(attribute.String("path", r.RequestURI), attribute.String("range", r.Header.Get("Range")))

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

	traceID := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		traceID = uuid.New().String()
	}

	now := time.Now()
	ex, err := h.serve(ctx, w, r)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("serve", "traceid", traceID, "error", err)
	}

	h.logger.Info("request completed",
		"traceid", traceID,
		"method", r.Method,
		"path", r.URL.Path,
		"range", r.Header.Get("Range"),
		"remoteaddr", r.RemoteAddr,
		"statusCode", ex.status,
		"declared", ex.declared,
		"written", ex.written,
		"since", time.Since(now).String(),
	)
}

func (h *Handler) serve(_ context.Context, w http.ResponseWriter, r *http.Request) (ex exchange, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
		}
	}()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return exchange{status: http.StatusMethodNotAllowed}, nil
	}

	size := int64(len(h.payload))
	body := h.payload
	status := http.StatusOK

	if header := r.Header.Get("Range"); header != "" {
		start, end, err := parseRange(header, size)
		if err != nil {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			http.Error(w, err.Error(), http.StatusRequestedRangeNotSatisfiable)
			if errors.Is(err, errUnsatisfiable) {
				return exchange{status: http.StatusRequestedRangeNotSatisfiable}, nil
			}
			return exchange{status: http.StatusRequestedRangeNotSatisfiable}, fmt.Errorf("parsing range: %w", err)
		}

		body = h.payload[start:end]
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end-1, size))
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)

	ex = exchange{status: status, declared: len(body)}
	if r.Method == http.MethodHead {
		return ex, nil
	}

	n := len(body)
	if status == http.StatusOK || h.glitchRanges {
		n = h.cut(n)
	}

	// Writing less than the declared Content-Length makes net/http close
	// the connection once the handler returns.
	written, err := w.Write(body[:n])
	ex.written = written
	if err != nil {
		return ex, fmt.Errorf("writing body: %w", err)
	}

	return ex, nil
}

// cut picks how many of n bytes to write: at least one, at most maxChunk.
func (h *Handler) cut(n int) int {
	if n == 0 {
		return 0
	}

	h.mu.Lock()
	k := 1 + h.rng.IntN(n)
	h.mu.Unlock()

	if h.maxChunk > 0 {
		k = min(k, h.maxChunk)
	}
	return k
}
