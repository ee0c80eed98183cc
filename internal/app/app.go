package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kimseungO/news-sum/internal/config"
	"github.com/kimseungO/news-sum/internal/infrastructure/llm"
	"github.com/kimseungO/news-sum/internal/infrastructure/metrics"
	"github.com/kimseungO/news-sum/internal/infrastructure/parser"
	"github.com/kimseungO/news-sum/internal/infrastructure/scheduler"
	"github.com/kimseungO/news-sum/internal/infrastructure/storage"
	"github.com/kimseungO/news-sum/internal/infrastructure/tabular"
	"github.com/kimseungO/news-sum/internal/infrastructure/telegram"
	"github.com/kimseungO/news-sum/internal/logging"
	"github.com/kimseungO/news-sum/internal/ports"
	"github.com/kimseungO/news-sum/internal/snapshot"
	"github.com/kimseungO/news-sum/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	tables   *snapshot.Registry
	notifier ports.Notifier
	recorder ports.RunRecorder

	// generator is overridable for tests; nil means build from cfg.LLM.
	generator ports.SummaryGenerator
}

// New validates cfg, opens the database and makes sure both tables exist.
// Callers must Close the application.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		tables:   snapshot.NewRegistry(tabular.XLSXCodec{}, tabular.CSVCodec{}),
		recorder: metrics.NewPusher(cfg.Metrics),
	}
	if cfg.Notifications.Telegram.Enabled() {
		a.notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	baseLogger.Info("application ready",
		"driver", store.Driver(),
		"llm", cfg.LLM.Provider,
		"telegram", cfg.Notifications.Telegram.Enabled(),
		"pushgateway", cfg.Metrics.PushgatewayURL != "")
	return a, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.store.Close()
}

// Load upserts the raw export at source into news_raw. An empty source
// falls back to the configured path.
func (a *Application) Load(ctx context.Context, source string) (usecase.LoadReport, error) {
	if source == "" {
		source = a.cfg.Loader.Source
	}

	loader := usecase.NewLoader(usecase.LoaderDeps{
		Tables:     a.tables,
		Repository: storage.NewRawRepository(a.store),
		Notifier:   a.notifier,
		Recorder:   a.recorder,
		Logger:     a.logger.With("component", "loader"),
	})
	return loader.Run(ctx, source)
}

// Summarize runs the cluster pipeline over input and writes output. Empty
// paths fall back to the configured ones.
func (a *Application) Summarize(ctx context.Context, input, output string) (usecase.SummarizeReport, error) {
	if input == "" {
		input = a.cfg.Summarizer.Input
	}
	if output == "" {
		output = a.cfg.Summarizer.Output
	}

	generator, err := a.summaryGenerator(ctx)
	if err != nil {
		return usecase.SummarizeReport{}, err
	}

	var extractor ports.TextExtractor
	if a.cfg.Summarizer.HTMLStripping() {
		extractor = parser.NewHTMLExtractor()
	}

	summarizer := usecase.NewSummarizer(usecase.SummarizerDeps{
		Tables:     a.tables,
		Generator:  generator,
		Repository: storage.NewSummaryRepository(a.store),
		Extractor:  extractor,
		Notifier:   a.notifier,
		Recorder:   a.recorder,
		Logger:     a.logger.With("component", "summarizer"),
		Delay:      a.cfg.Summarizer.Delay,
	})
	return summarizer.Run(ctx, input, output)
}

// RunAll loads the configured raw export and then summarizes the configured
// snapshot. A load failure does not prevent the summarizer from running.
func (a *Application) RunAll(ctx context.Context, trigger time.Time) error {
	a.logger.Info("batch started", "trigger", trigger.Format(time.RFC3339))

	_, loadErr := a.Load(ctx, "")
	if loadErr != nil {
		a.logger.Error("raw load failed", "error", loadErr)
		if ctx.Err() != nil {
			return loadErr
		}
	}

	_, sumErr := a.Summarize(ctx, "", "")
	if sumErr != nil {
		a.logger.Error("summarizer failed", "error", sumErr)
	}
	return errors.Join(loadErr, sumErr)
}

// Schedule runs RunAll on the configured cron expression until ctx is
// cancelled, optionally firing once immediately.
func (a *Application) Schedule(ctx context.Context, runNow bool) error {
	location := a.cfg.Scheduler.Location()
	if runNow {
		if err := a.RunAll(ctx, time.Now().In(location)); err != nil && ctx.Err() != nil {
			return err
		}
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, location, a.logger.With("component", "cron"))
	jobs := usecase.NewScheduler(driver, a.RunAll, a.logger.With("component", "scheduler"))
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	a.logger.Info("waiting for scheduled runs", "cron", a.cfg.Scheduler.CronExpression, "timezone", location.String())
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := jobs.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

func (a *Application) summaryGenerator(ctx context.Context) (ports.SummaryGenerator, error) {
	if a.generator != nil {
		return a.generator, nil
	}
	if err := a.cfg.ValidateSummarizer(); err != nil {
		return nil, err
	}

	switch a.cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return llm.NewChatGPTClient(a.cfg.LLM), nil
	default:
		client, err := llm.NewGeminiClient(ctx, a.cfg.LLM, nil)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
