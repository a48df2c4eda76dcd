package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"arcflow/internal/adapters/export"
	"arcflow/internal/blob"
	"arcflow/internal/config"
	"arcflow/internal/core"
	"arcflow/internal/logging"
)

type globalFlags struct {
	logLevel    string
	logFormat   string
	traceFile   string
	metricsFile string
}

// app is assembled by the root command before any sub-command runs.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	svc      *core.Service
	registry *prometheus.Registry
	store    blob.Store
	closers  []io.Closer
	flags    *globalFlags
}

func newRootCmd(a *app) *cobra.Command {
	flags := a.flags
	cmd := &cobra.Command{
		Use:           "arcflow",
		Short:         "Arc Flow to PRODUCE transformer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (overrides ARCFLOW_LOG_LEVEL)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format text|json (overrides ARCFLOW_LOG_FORMAT)")
	pf.StringVar(&flags.traceFile, "trace-file", "", "Append operation spans as JSON lines to this file")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file on exit")

	cmd.AddCommand(newTransformCmd(a), newValidateCmd(a), newCompareCmd(a), newDetectCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.LogFormat = a.flags.logFormat
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger

	a.registry = prometheus.NewRegistry()
	recorder, err := core.NewPrometheusRecorder(a.registry, cfg.MetricsNamespace)
	if err != nil {
		return err
	}
	opts := []core.Option{
		core.WithLogger(logrus.NewEntry(logger).WithField("command", cmd.Name())),
		core.WithMetricsRecorder(recorder),
	}
	if a.flags.traceFile != "" {
		f, err := os.OpenFile(a.flags.traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		a.closers = append(a.closers, f)
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	a.svc = core.NewService(opts...)
	return nil
}

// exporter opens the configured artifact store on first use and attaches an
// exporter to the service.
func (a *app) exporter(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}
	store, err := blob.Open(cmd.Context(), a.cfg.BlobOpen())
	if err != nil {
		return err
	}
	exp, err := export.New(store, a.cfg.Formats()...)
	if err != nil {
		return err
	}
	a.store = store
	core.WithExporter(exp)(a.svc)
	return nil
}

// teardown writes the metrics file and closes open files. It runs after every
// command, failed or not.
func (a *app) teardown() error {
	var errs []error
	if a.flags.metricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.flags.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
