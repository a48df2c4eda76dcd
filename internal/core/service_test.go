package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcflow/internal/adapters/export"
	"arcflow/internal/blob"
	"arcflow/internal/compare"
	"arcflow/internal/pipeline"
	"arcflow/internal/produce"
	"arcflow/pkg/domain"
)

const (
	mumScheme  = "BN-10INMUM-NSLN-SP"
	hangScheme = "BN-HANGONLY-X"
)

func sampleInput() pipeline.Input {
	return pipeline.Input{
		Schemes: []domain.Scheme{{Code: mumScheme, GenusCode: "MUM"}, {Code: hangScheme, GenusCode: "FERN"}},
		Lines: []domain.SchemeLine{
			{SchemeCode: mumScheme, LineNo: 10000, Phase: "GROW", Duration: 6, QtyPerArea: 4},
			{SchemeCode: hangScheme, LineNo: 10000, Phase: "HANG", Duration: 2, QtyPerArea: 1},
		},
		Preferences: []domain.Preference{
			{ProductionItemNo: "4000084", VariantCode: "B01", LocationCode: "KY01", SchemeCode: mumScheme},
		},
	}
}

type captureAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (c *captureAudit) Record(_ context.Context, entry AuditEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetrics struct {
	calls    []metricsCall
	records  map[string]int
	warnings int
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, d time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: d})
}

func (c *captureMetrics) CountRecords(_ context.Context, typ string, n int) {
	if c.records == nil {
		c.records = map[string]int{}
	}
	c.records[typ] += n
}

func (c *captureMetrics) CountWarnings(_ context.Context, n int) { c.warnings += n }

// tickingClock advances one second per reading.
func tickingClock() Clock {
	var mu sync.Mutex
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	})
}

func newTestService(t *testing.T, extra ...Option) (*Service, *bytes.Buffer, *captureMetrics, *captureAudit, *JSONTraceTracer) {
	t.Helper()
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})
	metrics := &captureMetrics{}
	audit := &captureAudit{}
	tracer := NewJSONTracer(nil)
	opts := append([]Option{
		WithLogger(logrus.NewEntry(logger)),
		WithClock(tickingClock()),
		WithMetricsRecorder(metrics),
		WithAuditRecorder(audit),
		WithTracer(tracer),
		WithRunIDs(func() string { return "run-1" }),
	}, extra...)
	return NewService(opts...), &logs, metrics, audit, tracer
}

func TestTransform_RecordsRunAndObservability(t *testing.T) {
	svc, logs, metrics, audit, tracer := newTestService(t)

	run, err := svc.Transform(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.True(t, run.FinishedAt.After(run.StartedAt))
	assert.Equal(t, 1, run.Summary.Recipes)
	assert.Equal(t, map[string][]domain.Window{hangScheme: {{Start: 1, End: 53}}}, run.Gaps)

	require.Len(t, metrics.calls, 1)
	assert.Equal(t, metricsCall{op: OpTransform, success: true, duration: 2 * time.Second}, metrics.calls[0])
	assert.Equal(t, 1, metrics.records[string(produce.Recipes)])

	require.Len(t, audit.entries, 1)
	assert.Equal(t, AuditStatusSuccess, audit.entries[0].Status)
	assert.Equal(t, "run-1", audit.entries[0].RunID)

	spans := tracer.Entries()
	require.Len(t, spans, 1)
	assert.Equal(t, OpTransform, spans[0].Operation)

	assert.Contains(t, logs.String(), `"run_id":"run-1"`)
	assert.Contains(t, logs.String(), `"msg":"transform finished"`)
	assert.Contains(t, logs.String(), `"recipes":1`)
}

func TestTransform_MissingInputFails(t *testing.T) {
	svc, logs, metrics, audit, tracer := newTestService(t)

	run, err := svc.Transform(context.Background(), pipeline.Input{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrMissingSchemes))
	assert.True(t, errors.Is(err, pipeline.ErrMissingSchemeLines))
	assert.True(t, run.Output.Failed())
	assert.Empty(t, run.Output.Recipes)
	assert.Nil(t, run.Gaps)

	assert.False(t, metrics.calls[0].success)
	assert.Equal(t, AuditStatusError, audit.entries[0].Status)
	assert.Equal(t, "error", tracer.Entries()[0].Status)
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Nil(t, metrics.records)
}

func TestTransform_LogsWarnings(t *testing.T) {
	svc, logs, metrics, _, _ := newTestService(t)
	in := sampleInput()
	in.Preferences = append(in.Preferences, domain.Preference{ProductionItemNo: "9", VariantCode: "X", LocationCode: "KY01", SchemeCode: "NOPE"})

	run, err := svc.Transform(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, run.Output.Warnings, 1)
	assert.Equal(t, 1, metrics.warnings)
	assert.Contains(t, logs.String(), `"level":"warning"`)
	assert.Contains(t, logs.String(), "NOPE")
}

func TestValidate(t *testing.T) {
	svc, _, metrics, audit, _ := newTestService(t)
	report := svc.Validate(context.Background(), sampleInput())
	assert.True(t, report.CanTransform)
	assert.Equal(t, OpValidate, metrics.calls[0].op)
	assert.Equal(t, true, audit.entries[0].Details["can_transform"])

	empty := svc.Validate(context.Background(), pipeline.Input{})
	assert.False(t, empty.CanTransform)
	assert.Equal(t, 0, empty.QualityScore)
	assert.True(t, metrics.calls[1].success)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _ := newTestService(t)
	run, err := svc.Transform(ctx, sampleInput())
	require.NoError(t, err)
	_, err = svc.Export(ctx, run)
	assert.True(t, errors.Is(err, ErrExporterNotConfigured))

	store := blob.NewMemory()
	exp, err := export.New(store, export.FormatCSV)
	require.NoError(t, err)
	svc, _, metrics, _, _ := newTestService(t, WithExporter(exp))
	manifest, err := svc.Export(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, "run-1", manifest.RunID)
	assert.Len(t, manifest.Artifacts, len(produce.Kinds()))
	assert.True(t, metrics.calls[0].success)
}

func TestCompare_DetectsTypeFromReference(t *testing.T) {
	ctx := context.Background()
	svc, _, _, audit, _ := newTestService(t)
	run, err := svc.Transform(ctx, sampleInput())
	require.NoError(t, err)

	reference := compare.Dataset{
		Headers: []string{"Location Code", "Scheme Code", "Start Week", "End Week", "Grow Weeks", "Genus"},
		Rows: []map[string]string{
			{"Location Code": "KY01", "Scheme Code": mumScheme, "Start Week": "1", "End Week": "53", "Grow Weeks": "7", "Genus": "MUM"},
			{"Location Code": "KY02", "Scheme Code": mumScheme, "Start Week": "1", "End Week": "53", "Grow Weeks": "6", "Genus": "MUM"},
		},
	}
	result, err := svc.Compare(ctx, run.Output, reference, "")
	require.NoError(t, err)
	assert.Equal(t, compare.OutputType(produce.Recipes), result.Type)
	assert.Equal(t, compare.Counts{Changed: 1, Removed: 1}, result.Counts)
	assert.Equal(t, "recipes", audit.entries[len(audit.entries)-1].Details["type"])
}

func TestCompare_UnknownType(t *testing.T) {
	ctx := context.Background()
	svc, _, metrics, _, _ := newTestService(t)
	_, err := svc.Compare(ctx, pipeline.Output{}, compare.Dataset{Headers: []string{"foo", "bar"}}, "")
	assert.True(t, errors.Is(err, compare.ErrUnknownCompareType))
	_, err = svc.Compare(ctx, pipeline.Output{}, compare.Dataset{}, "widgets")
	assert.True(t, errors.Is(err, compare.ErrUnknownCompareType))
	assert.False(t, metrics.calls[len(metrics.calls)-1].success)
}

func TestDetect(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	typ, ok := svc.Detect(context.Background(), produce.Headers(produce.Specs))
	assert.True(t, ok)
	assert.Equal(t, compare.OutputType(produce.Specs), typ)
	_, ok = svc.Detect(context.Background(), []string{"unrelated"})
	assert.False(t, ok)
}

func TestNewService_DefaultsAreSilent(t *testing.T) {
	svc := NewService(WithLogger(nil), WithClock(nil), WithTracer(nil), WithMetricsRecorder(nil), WithAuditRecorder(nil))
	run, err := svc.Transform(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg, "arcflow")
	require.NoError(t, err)

	svc := NewService(WithMetricsRecorder(rec))
	_, err = svc.Transform(context.Background(), sampleInput())
	require.NoError(t, err)
	_, err = svc.Transform(context.Background(), pipeline.Input{})
	require.Error(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(rec.operations.WithLabelValues(OpTransform, "success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.operations.WithLabelValues(OpTransform, "error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.records.WithLabelValues("recipes")))
	assert.Equal(t, 0.0, promtest.ToFloat64(rec.warnings))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "arcflow_operation_duration_seconds")
	assert.Contains(t, names, "arcflow_records_total")

	_, err = NewPrometheusRecorder(reg, "arcflow")
	assert.Error(t, err)
	_, err = NewPrometheusRecorder(nil, "arcflow")
	assert.Error(t, err)
}

func TestJSONTracer_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), OpCompare)
	span.End(errors.New("boom"))
	span.End(nil)
	require.Len(t, tracer.Entries(), 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"error":"boom"`)
}
