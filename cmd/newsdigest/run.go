package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kimseungO/news-sum/internal/app"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		cronExpr string
		now      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the raw export, then summarize clusters",
		Long: `Without --cron the batch runs once. With --cron it repeats on the
expression in scheduler.timezone until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("cron") {
				c.cfg.Scheduler.CronExpression = cronExpr
			}

			return c.withApp(cmd.Context(), func(a *app.Application) error {
				if cronExpr == "" {
					return a.RunAll(cmd.Context(), time.Now().In(c.cfg.Scheduler.Location()))
				}
				return a.Schedule(cmd.Context(), now)
			})
		},
	}
	cmd.Flags().StringVar(&cronExpr, "cron", "", `five-field cron expression, e.g. "0 6 * * *"`)
	cmd.Flags().BoolVar(&now, "now", false, "with --cron, also run once at start")
	return cmd
}
