package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arcflow/internal/adapters/workbook"
)

func newValidateCmd(a *app) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an Arc Flow export and print the validation report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := workbook.ReadInput(input)
			if err != nil {
				return err
			}
			report := a.svc.Validate(cmd.Context(), in)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.CanTransform {
				return fmt.Errorf("%w: %d validation errors", ErrCannotTransform, report.Errors)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Arc Flow workbook (.xlsx) or directory of CSV sheets (required)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
