package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"arcflow/internal/adapters/export"
	"arcflow/internal/adapters/workbook"
	"arcflow/internal/pipeline"
	"arcflow/internal/validation"
	"arcflow/pkg/domain"
)

// ErrCannotTransform is returned when validation finds blocking errors.
var ErrCannotTransform = errors.New("input cannot be transformed")

type transformOutput struct {
	RunID      string                     `json:"run_id"`
	Summary    pipeline.Summary           `json:"summary"`
	Validation validation.Report          `json:"validation"`
	Warnings   []string                   `json:"warnings,omitempty"`
	Gaps       map[string][]domain.Window `json:"gaps,omitempty"`
	Manifest   *export.Manifest           `json:"manifest,omitempty"`
}

func newTransformCmd(a *app) *cobra.Command {
	var (
		input    string
		doExport bool
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Validate and transform an Arc Flow export into PRODUCE records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := workbook.ReadInput(input)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			report := a.svc.Validate(ctx, in)
			if !report.CanTransform && !force {
				_ = writeJSON(cmd.OutOrStdout(), report)
				return fmt.Errorf("%w: %d validation errors", ErrCannotTransform, report.Errors)
			}
			run, err := a.svc.Transform(ctx, in)
			if err != nil {
				return err
			}
			out := transformOutput{
				RunID:      run.ID,
				Summary:    run.Summary,
				Validation: report,
				Warnings:   run.Output.Warnings,
				Gaps:       run.Gaps,
			}
			if doExport {
				if err := a.exporter(cmd); err != nil {
					return err
				}
				manifest, err := a.svc.Export(ctx, run)
				if err != nil {
					return err
				}
				out.Manifest = &manifest
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Arc Flow workbook (.xlsx) or directory of CSV sheets (required)")
	cmd.Flags().BoolVar(&doExport, "export", false, "Store the generated record sets in the configured artifact store")
	cmd.Flags().BoolVar(&force, "force", false, "Transform even when validation reports blocking errors")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

