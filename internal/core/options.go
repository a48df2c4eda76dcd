package core

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"arcflow/internal/adapters/export"
	"arcflow/internal/compare"
	"arcflow/internal/logging"
	"arcflow/internal/validation"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the log entry operations are logged through.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Service) {
		if entry != nil {
			s.log = entry
		}
	}
}

// WithClock overrides the time source used for run timestamps and durations.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder sets the recorder observing every operation. A recorder
// that also implements RecordCounter receives per-run record counts.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer sets the tracer spanning every operation.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the recorder notified after every operation.
func WithAuditRecorder(rec AuditRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.audit = rec
		}
	}
}

// WithExporter enables Export.
func WithExporter(exp *export.Exporter) Option {
	return func(s *Service) { s.exporter = exp }
}

// WithValidationEngine replaces the default validation rules.
func WithValidationEngine(engine *validation.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.validator = engine
		}
	}
}

// WithCompareEngine replaces the default comparison configs.
func WithCompareEngine(engine *compare.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.comparer = engine
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

func defaults() *Service {
	return &Service{
		log:       logging.Nop(),
		clock:     systemClock{},
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		audit:     noopAudit{},
		validator: validation.NewDefaultEngine(),
		comparer:  compare.NewDefaultEngine(),
		newID:     uuid.NewString,
	}
}
