package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{buf: &bytes.Buffer{}}
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return h
}

// records decodes every captured log line.
func (h *testHandler) records(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(h.buf.Bytes()))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestEnrichLogger(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	enriched := EnrichLogger(logger, "evt-1", "page.updated", 2)
	require.NotNil(t, enriched)
	enriched.Info("processing")

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "evt-1", recs[0]["event_id"])
	assert.Equal(t, "page.updated", recs[0]["event_type"])
	assert.Equal(t, float64(2), recs[0]["attempt"])
}

func TestEnrichLoggerNil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "evt-1", "t", 1))
}

func TestLogResolveHelpers(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	LogResolveStart(logger, 4)
	LogResolveComplete(logger, 4, 1.5)
	LogResolveError(logger, errors.New("cycle detected"))

	recs := h.records(t)
	require.Len(t, recs, 3)

	assert.Equal(t, "resolving load order", recs[0]["msg"])
	assert.Equal(t, float64(4), recs[0]["node_count"])

	assert.Equal(t, "load order resolved", recs[1]["msg"])
	assert.Equal(t, 1.5, recs[1]["duration_ms"])

	assert.Equal(t, "load order resolution failed", recs[2]["msg"])
	assert.Equal(t, "cycle detected", recs[2]["error"])
}

func TestLogResolveHelpersNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogResolveStart(nil, 1)
		LogResolveComplete(nil, 1, 0)
		LogResolveError(nil, errors.New("x"))
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, float64(0))
}
