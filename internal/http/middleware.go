package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// contextKeyFormKind holds the validator or mask kind a handler resolved.
// Only known kinds are set, which keeps the metric label set bounded.
const contextKeyFormKind = "horizonte.form.kind"

// unmatchedRoute replaces the raw path of requests no route matched. Paths
// may carry a CEP or a document number and are never recorded.
const unmatchedRoute = "unmatched"

type httpMetrics struct {
	requests       metric.Int64Counter
	duration       metric.Float64Histogram
	internalErrors metric.Int64Counter
}

func newHTTPMetrics(logger *slog.Logger) httpMetrics {
	meter := otel.Meter("horizonte-forms/http")
	var m httpMetrics
	var err error

	m.requests, err = meter.Int64Counter(
		"horizonte.http.server.request.count",
		metric.WithDescription("Total de requests HTTP processadas pela API"),
	)
	if err != nil {
		logger.Error("create request counter", "error", err)
	}
	m.duration, err = meter.Float64Histogram(
		"horizonte.http.server.request.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duracao de requests HTTP em milissegundos"),
	)
	if err != nil {
		logger.Error("create request duration histogram", "error", err)
	}
	m.internalErrors, err = meter.Int64Counter(
		"horizonte.http.server.internal_error.count",
		metric.WithDescription("Total de erros internos HTTP (5xx)"),
	)
	if err != nil {
		logger.Error("create internal error counter", "error", err)
	}
	return m
}

func (m httpMetrics) record(ctx context.Context, durationMs float64, attrs []attribute.KeyValue) {
	if m.requests != nil {
		m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, durationMs, metric.WithAttributes(attrs...))
	}
}

func (m httpMetrics) recordInternalError(ctx context.Context, errorType string, attrs []attribute.KeyValue) {
	if m.internalErrors == nil {
		return
	}
	if errorType == "" {
		errorType = "unknown"
	}
	internalAttrs := append([]attribute.KeyValue{}, attrs...)
	internalAttrs = append(internalAttrs, attribute.String("error.type", errorType))
	m.internalErrors.Add(ctx, 1, metric.WithAttributes(internalAttrs...))
}

func requestObservabilityMiddleware(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := newHTTPMetrics(logger)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		durationMs := float64(time.Since(start)) / float64(time.Millisecond)

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		}
		logAttrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", durationMs,
			"request_id", c.Writer.Header().Get(headerRequestID),
			"client_ip", c.ClientIP(),
		}
		if kind := c.GetString(contextKeyFormKind); kind != "" {
			attrs = append(attrs, attribute.String("form.kind", kind))
			logAttrs = append(logAttrs, "form_kind", kind)
		}
		if c.Query(queryFieldID) != "" {
			logAttrs = append(logAttrs, "field_scoped", true)
		}
		metrics.record(ctx, durationMs, attrs)
		logAttrs = appendSpanAttrs(logAttrs, trace.SpanFromContext(ctx).SpanContext())

		var errorType string
		if len(c.Errors) > 0 {
			lastErr := c.Errors.Last().Err
			errorType = classifyErrorType(lastErr)
			logAttrs = append(logAttrs, "error", lastErr.Error(), "error_type", errorType)
		}
		if status >= http.StatusInternalServerError {
			metrics.recordInternalError(ctx, errorType, attrs)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "http request", logAttrs...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "http request", logAttrs...)
		default:
			logger.InfoContext(ctx, "http request", logAttrs...)
		}
	}
}

func panicRecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			err := fmt.Errorf("panic recovered: %v", recovered)
			_ = c.Error(err)

			span := trace.SpanFromContext(c.Request.Context())
			if span.SpanContext().IsValid() {
				span.RecordError(err)
				span.SetStatus(codes.Error, "panic recovered")
				span.SetAttributes(
					attribute.Bool("error", true),
					attribute.String("error.type", "panic"),
				)
			}

			logAttrs := []any{
				"panic", recovered,
				"stack_trace", string(debug.Stack()),
				"method", c.Request.Method,
				"route", c.FullPath(),
				"request_id", requestid.Get(c),
				"client_ip", c.ClientIP(),
			}
			logAttrs = appendSpanAttrs(logAttrs, span.SpanContext())
			logger.ErrorContext(c.Request.Context(), "panic recovered", logAttrs...)

			writeProblemResponse(c, http.StatusInternalServerError, problemTypeInternal, "Internal Server Error", "internal server error")
		}()

		c.Next()
	}
}

func appendSpanAttrs(logAttrs []any, spanContext trace.SpanContext) []any {
	if !spanContext.IsValid() {
		return logAttrs
	}
	return append(
		logAttrs,
		"trace_id", spanContext.TraceID().String(),
		"span_id", spanContext.SpanID().String(),
	)
}
