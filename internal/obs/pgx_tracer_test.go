package obs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/tour-inventory/internal/obs"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestPGXTracerNamesSpanAfterOperation(t *testing.T) {
	recorder := withSpanRecorder(t)
	tracer := obs.PGXTracer{}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL:  "\n\tselect id, base_rate\n\tfrom rates where id = $1",
		Args: []any{"rate-1"},
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 3")})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "pgx SELECT", spans[0].Name())
	stmt, ok := attrValue(spans[0].Attributes(), "db.statement")
	require.True(t, ok)
	require.Equal(t, "select id, base_rate from rates where id = $1", stmt.AsString())
	rows, ok := attrValue(spans[0].Attributes(), "db.rows_affected")
	require.True(t, ok)
	require.Equal(t, int64(3), rows.AsInt64())
}

func TestPGXTracerRecordsErrors(t *testing.T) {
	recorder := withSpanRecorder(t)
	tracer := obs.PGXTracer{}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("relation \"rates\" does not exist")})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
}
