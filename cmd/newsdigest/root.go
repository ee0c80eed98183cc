package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kimseungO/news-sum/internal/app"
	"github.com/kimseungO/news-sum/internal/config"
	"github.com/kimseungO/news-sum/internal/logging"
)

// cli holds state shared by the sub-commands of one invocation.
type cli struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "newsdigest",
		Short: "Load raw news exports and summarize article clusters",
		Long: `newsdigest keeps two tables in sync with spreadsheet exports.

  newsdigest load        # upsert the raw export into news_raw
  newsdigest summarize   # summarize each cluster into news_sum
  newsdigest run         # load, then summarize
  newsdigest run --cron "0 6 * * *"   # repeat on a schedule`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.cfg = config.Load(c.cfgFile)
			c.logger = logging.NewWithWriter(cmd.ErrOrStderr(), c.cfg.Logging.Level, c.cfg.Logging.Format)
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (default $NEWSDIGEST_CONFIG)")

	root.AddCommand(newLoadCmd(c), newSummarizeCmd(c), newRunCmd(c))
	return root
}

// withApp opens the application for one command and always closes it.
func (c *cli) withApp(ctx context.Context, fn func(*app.Application) error) error {
	application, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			c.logger.Warn("close database", "error", err)
		}
	}()
	return fn(application)
}
