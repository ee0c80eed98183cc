package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
	"github.com/kimseungO/news-sum/internal/snapshot"
)

// LoaderDeps wires the driven adapters the raw loader needs.
type LoaderDeps struct {
	Tables     ports.TableStore
	Repository ports.RawArticleRepository
	Notifier   ports.Notifier
	Recorder   ports.RunRecorder
	Logger     *slog.Logger
}

// Loader upserts a raw export into news_raw row by row.
type Loader struct {
	tables     ports.TableStore
	repository ports.RawArticleRepository
	notifier   ports.Notifier
	recorder   ports.RunRecorder
	logger     *slog.Logger
}

// NewLoader constructs the loader use case.
func NewLoader(deps LoaderDeps) *Loader {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		tables:     deps.Tables,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		recorder:   deps.Recorder,
		logger:     logger,
	}
}

// Run loads source and upserts each row. Row failures are tallied and never
// stop the run; only an unreadable source or a cancelled ctx return an error.
func (l *Loader) Run(ctx context.Context, source string) (LoadReport, error) {
	started := time.Now()
	var report LoadReport

	table, err := l.tables.Load(source)
	if err != nil {
		return report, fmt.Errorf("load source: %w", err)
	}

	if table.Len() == 0 {
		l.logger.Warn("source has no rows", "source", source)
	}

	l.logger.Info("loading raw articles", "source", source, "rows", table.Len())

	for i := 0; i < table.Len(); i++ {
		if err := ctx.Err(); err != nil {
			report.Took = time.Since(started)
			return report, fmt.Errorf("load interrupted at row %d: %w", i, err)
		}
		report.add(l.loadRow(ctx, table, i))
	}

	report.Took = time.Since(started)
	l.logger.Info("raw load finished",
		"total", report.Total,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"failed", report.Failed,
		"took", report.Took.Round(time.Millisecond))

	l.publish(ctx, report)
	return report, nil
}

func (l *Loader) loadRow(ctx context.Context, table *snapshot.Table, row int) domain.RowOutcome {
	article, err := snapshot.DecodeArticle(table, row)
	if err != nil {
		url, _ := table.Get(row, snapshot.ColURL)
		l.logger.Warn("row rejected", "row", row, "url", url, "error", err)
		return domain.RowOutcome{Row: row, URL: url, Err: err}
	}

	result, err := l.repository.Upsert(ctx, article)
	if err != nil {
		l.logger.Error("row upsert failed", "row", row, "url", article.URL, "error", err)
		return domain.RowOutcome{Row: row, URL: article.URL, Err: err}
	}

	l.logger.Debug("row stored", "row", row, "url", article.URL, "result", result)
	return domain.RowOutcome{Row: row, URL: article.URL, Result: result}
}

func (l *Loader) publish(ctx context.Context, report LoadReport) {
	if l.recorder != nil {
		if err := l.recorder.RecordLoad(ctx, report.Inserted, report.Updated, report.Failed, report.Took); err != nil {
			l.logger.Warn("push load metrics", "error", err)
		}
	}
	if l.notifier != nil {
		if err := l.notifier.PublishDigest(ctx, buildLoadDigest(report)); err != nil {
			l.logger.Warn("publish load report", "error", err)
		}
	}
}
