package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arcflow/internal/adapters/workbook"
	"arcflow/internal/compare"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		input   string
		typ     string
		refOpts referenceFlags
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Transform an Arc Flow export and diff one record set against a reference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := refOpts.load(cmd, a)
			if err != nil {
				return err
			}
			in, err := workbook.ReadInput(input)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			run, err := a.svc.Transform(ctx, in)
			if err != nil {
				return err
			}
			result, err := a.svc.Compare(ctx, run.Output, ref, compare.OutputType(typ))
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if strict && result.Counts.Matched != len(result.Rows) {
				return fmt.Errorf("%d changed, %d added, %d removed", result.Counts.Changed, result.Counts.Added, result.Counts.Removed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Arc Flow workbook (.xlsx) or directory of CSV sheets (required)")
	cmd.Flags().StringVar(&typ, "type", "", "Record set to compare: catalogs|recipes|events|specs|mixes (default: detect)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero unless every row matches")
	refOpts.register(cmd)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
