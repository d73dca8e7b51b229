package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wbsdash/internal/exporter"
)

func (o *cliOptions) exportCmd() *cobra.Command {
	var activities []string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the WBS tree and weekly series to a new xlsx report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.output == "" {
				return errors.New("export requires -o/--output")
			}
			s, err := o.open(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			stderr := cmd.ErrOrStderr()
			f, err := s.coord.Export(s.req, activities, func(e exporter.ProgressEvent) {
				fmt.Fprintf(stderr, "[%3d%%] %s\n", e.Percent, e.Stage)
			})
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if err := f.SaveAs(o.output); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&activities, "activity", nil, "Activity IDs to add weekly sheets for (repeatable)")
	return cmd
}
