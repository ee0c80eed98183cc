package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kimseungO/news-sum/internal/app"
)

func newSummarizeCmd(c *cli) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize each article cluster into news_sum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.Application) error {
				report, err := a.Summarize(cmd.Context(), input, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "clusters %d: persisted %d, skipped %d, failed %d\n",
					len(report.Clusters), report.Persisted, report.Skipped, report.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "clustered snapshot; defaults to summarizer.input")
	cmd.Flags().StringVar(&output, "output", "", "annotated snapshot; defaults to summarizer.output")
	return cmd
}
