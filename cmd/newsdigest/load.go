package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kimseungO/news-sum/internal/app"
)

func newLoadCmd(c *cli) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert the raw article export into news_raw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				report, err := a.Load(cmd.Context(), source)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rows %d: inserted %d, updated %d, failed %d\n",
					report.Total, report.Inserted, report.Updated, report.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "raw export (.xlsx or .csv); defaults to loader.source")
	return cmd
}
