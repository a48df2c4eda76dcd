// Package core hosts the Service that runs validation, transformation, export
// and comparison with logging, metrics, tracing and audit around each call.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"arcflow/internal/adapters/export"
	"arcflow/internal/compare"
	"arcflow/internal/pipeline"
	"arcflow/internal/produce"
	"arcflow/internal/validation"
	"arcflow/pkg/domain"
)

// Operation names used for logs, metrics, spans and audit entries.
const (
	OpValidate  = "validate"
	OpTransform = "transform"
	OpExport    = "export"
	OpCompare   = "compare"
	OpDetect    = "detect"
)

// ErrExporterNotConfigured is returned by Export when no exporter was supplied.
var ErrExporterNotConfigured = errors.New("exporter not configured")

// Run is the result of one Transform call.
type Run struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Output     pipeline.Output  `json:"output"`
	Summary    pipeline.Summary `json:"summary"`
	// Gaps lists, per scheme code, the week segments that received no recipe
	// because no GROW rule covers them.
	Gaps map[string][]domain.Window `json:"gaps,omitempty"`
}

// Service is the host-facing entry point.
type Service struct {
	log       *logrus.Entry
	clock     Clock
	metrics   MetricsRecorder
	tracer    Tracer
	audit     AuditRecorder
	exporter  *export.Exporter
	validator *validation.Engine
	comparer  *compare.Engine
	newID     func() string
}

// NewService applies opts over no-op observability and the default engines.
func NewService(opts ...Option) *Service {
	s := defaults()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks in and returns the report. A report that cannot transform is
// not an error.
func (s *Service) Validate(ctx context.Context, in pipeline.Input) validation.Report {
	var report validation.Report
	_ = s.observe(ctx, OpValidate, "", func(ctx context.Context, fields logrus.Fields) (map[string]any, error) {
		report = s.validator.Evaluate(validation.Input(in))
		fields["errors"] = report.Errors
		fields["warnings"] = report.Warnings
		fields["quality_score"] = report.QualityScore
		fields["can_transform"] = report.CanTransform
		return map[string]any{"quality_score": report.QualityScore, "can_transform": report.CanTransform}, nil
	})
	return report
}

// Transform runs the pipeline under a new run id. When required input is
// missing the returned Run still carries the empty output and its errors, and
// the error wraps the pipeline's sentinels.
func (s *Service) Transform(ctx context.Context, in pipeline.Input) (Run, error) {
	run := Run{ID: s.newID(), StartedAt: s.clock.Now()}
	err := s.observe(ctx, OpTransform, run.ID, func(ctx context.Context, fields logrus.Fields) (map[string]any, error) {
		run.Output = pipeline.Transform(in)
		run.Summary = run.Output.Summary()
		run.FinishedAt = s.clock.Now()
		if run.Output.Failed() {
			return nil, fmt.Errorf("transform run %s: %w", run.ID, run.Output.Err())
		}
		run.Gaps = coverageGaps(in)

		logger := s.log.WithField("run_id", run.ID)
		for _, w := range run.Output.Warnings {
			logger.Warn(w)
		}
		for code, gaps := range run.Gaps {
			logger.WithFields(logrus.Fields{"scheme": code, "segments": len(gaps)}).Debug("weeks without grow coverage")
		}
		s.countRecords(ctx, run.Summary)

		fields["catalogs"] = run.Summary.Catalogs
		fields["recipes"] = run.Summary.Recipes
		fields["events"] = run.Summary.Events
		fields["specs"] = run.Summary.Specs
		fields["mixes"] = run.Summary.Mixes
		fields["warnings"] = run.Summary.Warnings
		return map[string]any{"summary": run.Summary}, nil
	})
	return run, err
}

// Export stores the run's record sets through the configured exporter.
func (s *Service) Export(ctx context.Context, run Run) (export.Manifest, error) {
	var manifest export.Manifest
	err := s.observe(ctx, OpExport, run.ID, func(ctx context.Context, fields logrus.Fields) (map[string]any, error) {
		if s.exporter == nil {
			return nil, ErrExporterNotConfigured
		}
		var err error
		manifest, err = s.exporter.Export(ctx, run.ID, run.Output)
		if err != nil {
			return nil, err
		}
		fields["artifacts"] = len(manifest.Artifacts)
		return map[string]any{"artifacts": len(manifest.Artifacts)}, nil
	})
	return manifest, err
}

// Detect guesses the record set a reference header row belongs to.
func (s *Service) Detect(ctx context.Context, headers []string) (compare.OutputType, bool) {
	var (
		typ compare.OutputType
		ok  bool
	)
	_ = s.observe(ctx, OpDetect, "", func(_ context.Context, fields logrus.Fields) (map[string]any, error) {
		typ, ok = s.comparer.DetectCompareType(headers)
		fields["type"] = string(typ)
		fields["detected"] = ok
		return nil, nil
	})
	return typ, ok
}

// Compare diffs one record set of out against reference. An empty typ is
// detected from the reference headers; failing detection yields
// compare.ErrUnknownCompareType.
func (s *Service) Compare(ctx context.Context, out pipeline.Output, reference compare.Dataset, typ compare.OutputType) (compare.Result, error) {
	var result compare.Result
	err := s.observe(ctx, OpCompare, "", func(_ context.Context, fields logrus.Fields) (map[string]any, error) {
		if typ == "" {
			detected, ok := s.comparer.DetectCompareType(reference.Headers)
			if !ok {
				return nil, fmt.Errorf("%w: headers match no record set", compare.ErrUnknownCompareType)
			}
			typ = detected
		}
		table, err := produce.TableFor(out, typ)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", compare.ErrUnknownCompareType, err)
		}
		result, err = s.comparer.CompareData(compare.FromTable(table), reference, typ)
		if err != nil {
			return nil, err
		}
		fields["type"] = string(typ)
		fields["matched"] = result.Counts.Matched
		fields["changed"] = result.Counts.Changed
		fields["added"] = result.Counts.Added
		fields["removed"] = result.Counts.Removed
		return map[string]any{"type": string(typ), "counts": result.Counts}, nil
	})
	return result, err
}

type operation func(ctx context.Context, fields logrus.Fields) (map[string]any, error)

// observe wraps fn with a span, a metrics observation, an audit entry and one
// log line carrying the fields fn filled in.
func (s *Service) observe(ctx context.Context, op, runID string, fn operation) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := s.clock.Now()
	fields := logrus.Fields{"operation": op}
	if runID != "" {
		fields["run_id"] = runID
	}

	details, err := fn(ctx, fields)

	elapsed := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)

	entry := AuditEntry{Operation: op, RunID: runID, Status: AuditStatusSuccess, Details: details, OccurredAt: s.clock.Now()}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)

	fields["duration_ms"] = elapsed.Milliseconds()
	logger := s.log.WithContext(ctx).WithFields(fields)
	if err != nil {
		logger.WithError(err).Error(op + " failed")
		return err
	}
	logger.Info(op + " finished")
	return nil
}

func (s *Service) countRecords(ctx context.Context, sum pipeline.Summary) {
	counter, ok := s.metrics.(RecordCounter)
	if !ok {
		return
	}
	counter.CountRecords(ctx, string(produce.Catalogs), sum.Catalogs)
	counter.CountRecords(ctx, string(produce.Recipes), sum.Recipes)
	counter.CountRecords(ctx, string(produce.Events), sum.Events)
	counter.CountRecords(ctx, string(produce.Specs), sum.Specs)
	counter.CountRecords(ctx, string(produce.Mixes), sum.Mixes)
	counter.CountWarnings(ctx, sum.Warnings)
}

// coverageGaps reports, per scheme, the segments MergeIntervals drops.
func coverageGaps(in pipeline.Input) map[string][]domain.Window {
	dict := pipeline.BuildSchemeDictionary(in.Lines, in.Periods)
	var gaps map[string][]domain.Window
	for _, code := range dict.Codes() {
		rules, _ := dict.Rules(code)
		if segments := pipeline.UncoveredSegments(rules); len(segments) > 0 {
			if gaps == nil {
				gaps = make(map[string][]domain.Window)
			}
			gaps[code] = segments
		}
	}
	return gaps
}
