package ports

import (
	"context"
	"time"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/snapshot"
)

// TableStore reads and writes tabular snapshots by path.
type TableStore interface {
	Load(path string) (*snapshot.Table, error)
	Save(path string, t *snapshot.Table) error
}

// RawArticleRepository upserts raw articles keyed by URL.
type RawArticleRepository interface {
	Upsert(ctx context.Context, article domain.Article) (domain.UpsertResult, error)
}

// SummaryRepository upserts cluster summaries keyed by topic id.
type SummaryRepository interface {
	Upsert(ctx context.Context, summary domain.Summary) error
}

// SummaryGenerator sends composed cluster text to a generative model and
// returns its raw JSON text.
type SummaryGenerator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// TextExtractor reduces markup in article contents to plain text.
type TextExtractor interface {
	PlainText(contents string) string
}

// Notifier streams run reports to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// RunRecorder exports per-run tallies.
type RunRecorder interface {
	RecordLoad(ctx context.Context, inserted, updated, failed int, took time.Duration) error
	RecordSummarize(ctx context.Context, persisted, skipped, failed int, took time.Duration) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
