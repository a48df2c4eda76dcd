package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arcflow/internal/compare"
)

type detectOutput struct {
	Type     compare.OutputType `json:"type"`
	Detected bool               `json:"detected"`
	Headers  []string           `json:"headers"`
}

func newDetectCmd(a *app) *cobra.Command {
	var refOpts referenceFlags
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the record set a reference dataset's headers belong to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := refOpts.load(cmd, a)
			if err != nil {
				return err
			}
			typ, ok := a.svc.Detect(cmd.Context(), ref.Headers)
			if err := writeJSON(cmd.OutOrStdout(), detectOutput{Type: typ, Detected: ok, Headers: ref.Headers}); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: headers match no record set", compare.ErrUnknownCompareType)
			}
			return nil
		},
	}
	refOpts.register(cmd)
	return cmd
}

