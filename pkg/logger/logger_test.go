package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceHandlerInjectsIDsWhenSpanValid(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	h := logger.NewTraceHandler(base)
	l := slog.New(h)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    [16]byte{1},
		SpanID:     [8]byte{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), "span_id")
}

func TestTraceHandlerSkipsWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	h := logger.NewTraceHandler(base)
	l := slog.New(h)

	l.InfoContext(context.Background(), "hello")

	assert.NotContains(t, buf.String(), "trace_id")
}
