package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
)

var rawColumns = []string{
	"title", "url", "contents", "thumbnail", "company", "subject",
	"upload_date", "cluster2nd", "keyword", "counts",
}

// RawRepository upserts raw articles into news_raw keyed by url.
type RawRepository struct {
	store *Store
}

var _ ports.RawArticleRepository = (*RawRepository)(nil)

// NewRawRepository wires the shared store.
func NewRawRepository(store *Store) *RawRepository {
	return &RawRepository{store: store}
}

// Upsert inserts the article or overwrites every column of the row with the
// same url. The insert/update distinction comes from an existence check in
// the same transaction because affected-row counts differ across drivers.
func (r *RawRepository) Upsert(ctx context.Context, article domain.Article) (domain.UpsertResult, error) {
	if article.URL == "" {
		return "", fmt.Errorf("upsert raw: empty url")
	}

	b := r.store.dialect.builder()

	exists, existsArgs, err := b.Select("COUNT(*)").
		From(rawTable).
		Where("url = ?", article.URL).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build raw lookup: %w", err)
	}

	upsert, args, err := b.Insert(rawTable).
		Columns(rawColumns...).
		Values(
			article.Title,
			article.URL,
			article.Contents,
			article.Thumbnail,
			article.Company,
			article.Subject,
			article.UploadDate,
			article.ClusterID,
			article.Keyword,
			article.Counts,
		).
		Suffix(r.store.dialect.upsertSuffix("url", rawColumns)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build raw upsert: %w", err)
	}

	var result domain.UpsertResult
	err = r.store.inTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, exists, existsArgs...).Scan(&existing); err != nil {
			return fmt.Errorf("look up raw %s: %w", article.URL, err)
		}
		if _, err := tx.ExecContext(ctx, upsert, args...); err != nil {
			return fmt.Errorf("upsert raw %s: %w", article.URL, err)
		}
		result = domain.Inserted
		if existing > 0 {
			result = domain.Updated
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return result, nil
}
