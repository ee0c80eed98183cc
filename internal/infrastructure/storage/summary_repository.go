package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
)

var summaryColumns = []string{
	"topic_id", "topic_title", "topic_content", "new_cnt", "sum_date", "keyword",
}

// SummaryRepository persists cluster summaries into news_sum.
type SummaryRepository struct {
	store *Store
}

var _ ports.SummaryRepository = (*SummaryRepository)(nil)

// NewSummaryRepository wires the shared store.
func NewSummaryRepository(store *Store) *SummaryRepository {
	return &SummaryRepository{store: store}
}

// Upsert writes the summary, replacing any earlier one for the same topic.
func (r *SummaryRepository) Upsert(ctx context.Context, summary domain.Summary) error {
	query, args, err := r.store.dialect.builder().
		Insert(summaryTable).
		Columns(summaryColumns...).
		Values(
			summary.TopicID,
			summary.Title,
			summary.Content,
			summary.NewCnt,
			summary.SumDate,
			summary.Keyword,
		).
		Suffix(r.store.dialect.upsertSuffix("topic_id", summaryColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build summary upsert: %w", err)
	}

	return r.store.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert summary %d: %w", summary.TopicID, err)
		}
		return nil
	})
}
