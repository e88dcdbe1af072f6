package receiver

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxBodySize = 10 << 20

type middlewareConfig struct {
	dedup          Deduplicator
	logger         *zap.Logger
	urlFunc        func(*http.Request) string
	clockTolerance time.Duration
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithDeduplicator acknowledges repeated deliveries without calling the
// wrapped handler.
func WithDeduplicator(d Deduplicator) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.dedup = d
	}
}

// WithLogger logs rejected deliveries.
func WithLogger(l *zap.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = l
	}
}

// WithURL derives the public URL of a request, which must match the signed
// subject. Behind a proxy the URL QStash called differs from r.URL.
func WithURL(fn func(*http.Request) string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.urlFunc = fn
	}
}

// WithClockTolerance sets the leeway applied to token expiry.
func WithClockTolerance(d time.Duration) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.clockTolerance = d
	}
}

// Middleware verifies each request before passing it to next. Requests that
// fail verification get 401 and bodies over 10 MiB get 413. The body is
// buffered and restored for next.
//
// With a Deduplicator, a message id is claimed before next runs and released
// again unless next answers with a 2xx status, so QStash's retry of a failed
// delivery reaches the handler.
func (r *Receiver) Middleware(next http.Handler, opts ...MiddlewareOption) http.Handler {
	cfg := middlewareConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
		req.Body.Close()
		if err != nil {
			cfg.logger.Warn("failed to read delivery body", zap.Error(err))
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(body) > maxBodySize {
			cfg.logger.Warn("delivery body too large", zap.String("message_id", req.Header.Get(MessageIDHeader)))
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}

		vr := VerifyRequest{
			Signature:      req.Header.Get(SignatureHeader),
			Body:           body,
			ClockTolerance: cfg.clockTolerance,
		}
		if cfg.urlFunc != nil {
			vr.URL = cfg.urlFunc(req)
		}
		if err := r.Verify(vr); err != nil {
			cfg.logger.Warn("rejected delivery",
				zap.String("message_id", req.Header.Get(MessageIDHeader)),
				zap.Error(err),
			)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))

		id := req.Header.Get(MessageIDHeader)
		if cfg.dedup == nil || id == "" {
			next.ServeHTTP(w, req)
			return
		}

		seen, err := cfg.dedup.Seen(req.Context(), id)
		if err != nil {
			cfg.logger.Error("deduplication failed", zap.String("message_id", id), zap.Error(err))
			http.Error(w, "deduplication failed", http.StatusInternalServerError)
			return
		}
		if seen {
			cfg.logger.Debug("duplicate delivery", zap.String("message_id", id))
			w.WriteHeader(http.StatusOK)
			return
		}

		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			if sw.succeeded() {
				return
			}
			// Runs on panic too; the panic keeps propagating.
			if err := cfg.dedup.Forget(context.WithoutCancel(req.Context()), id); err != nil {
				cfg.logger.Error("failed to release message id", zap.String("message_id", id), zap.Error(err))
			}
		}()
		next.ServeHTTP(sw, req)
		sw.done = true
	})
}

// statusWriter records the status next responded with.
type statusWriter struct {
	http.ResponseWriter
	status int
	done   bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// succeeded reports whether next returned normally with a 2xx status. A
// handler that writes nothing is answered 200 by net/http.
func (w *statusWriter) succeeded() bool {
	if !w.done {
		return false
	}
	return w.status == 0 || (w.status >= 200 && w.status < 300)
}
