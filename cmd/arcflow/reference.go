package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"arcflow/internal/adapters/workbook"
	"arcflow/internal/compare"
	"arcflow/internal/infra/reference"
)

// referenceFlags locate a reference dataset in a file or a SQL table.
type referenceFlags struct {
	path   string
	sheet  string
	table  string
	driver string
	dsn    string
}

func (f *referenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "reference", "", "Reference dataset (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Workbook sheet holding the reference (default: first sheet)")
	cmd.Flags().StringVar(&f.table, "sql-table", "", "Load the reference from this SQL table instead of a file")
	cmd.Flags().StringVar(&f.driver, "reference-driver", "", "SQL driver sqlite|postgres (overrides ARCFLOW_REFERENCE_DRIVER)")
	cmd.Flags().StringVar(&f.dsn, "reference-dsn", "", "SQL DSN or SQLite path (overrides ARCFLOW_REFERENCE_DSN)")
	cmd.MarkFlagsMutuallyExclusive("reference", "sql-table")
}

func (f *referenceFlags) load(cmd *cobra.Command, a *app) (compare.Dataset, error) {
	switch {
	case f.table != "":
		driver, dsn := a.cfg.Reference.Driver, a.cfg.Reference.DSN
		if f.driver != "" {
			driver = f.driver
		}
		if f.dsn != "" {
			dsn = f.dsn
		}
		store, err := reference.Open(cmd.Context(), driver, dsn)
		if err != nil {
			return compare.Dataset{}, err
		}
		defer func() { _ = store.Close() }()
		ds, err := store.Load(cmd.Context(), f.table)
		if err != nil {
			return compare.Dataset{}, fmt.Errorf("load reference table: %w", err)
		}
		return ds, nil
	case f.path != "":
		return workbook.ReadDataset(f.path, f.sheet)
	}
	return compare.Dataset{}, errors.New("one of --reference or --sql-table is required")
}
