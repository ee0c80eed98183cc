package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/kimseungO/news-sum/internal/domain"
)

// ErrMissingURL is returned for rows without the natural key.
var ErrMissingURL = errors.New("row has no url")

var nullLike = map[string]struct{}{
	"":     {},
	"nan":  {},
	"nat":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"<na>": {},
}

// IsNull reports whether a cell should be treated as absent.
func IsNull(value string) bool {
	_, ok := nullLike[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Text returns the trimmed cell or an absent value.
func Text(value string) sql.Null[string] {
	if IsNull(value) {
		return sql.Null[string]{}
	}
	return domain.Some(strings.TrimSpace(value))
}

// Int parses an integer cell. Integral floats such as "5.0" are accepted
// because spreadsheet exports often widen integer columns.
func Int(value string) (sql.Null[int64], error) {
	if IsNull(value) {
		return sql.Null[int64]{}, nil
	}
	s := strings.TrimSpace(value)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.Some(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return sql.Null[int64]{}, fmt.Errorf("not an integer: %q", s)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return sql.Null[int64]{}, fmt.Errorf("not an integer: %q", s)
	}
	return domain.Some(int64(f)), nil
}

// Time parses a date cell. Bare numbers are read as spreadsheet serial dates.
func Time(value string) (sql.Null[time.Time], error) {
	if IsNull(value) {
		return sql.Null[time.Time]{}, nil
	}
	s := strings.TrimSpace(value)
	if isSerialDate(s) {
		f, _ := strconv.ParseFloat(s, 64)
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return sql.Null[time.Time]{}, fmt.Errorf("serial date %q: %w", s, err)
		}
		return domain.Some(t), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return sql.Null[time.Time]{}, fmt.Errorf("not a date: %q: %w", s, err)
	}
	return domain.Some(t), nil
}

// isSerialDate matches spreadsheet serial numbers (days since 1899-12-30,
// five integer digits for any date after 1927). Shorter or longer digit runs
// are left to dateparse, which reads them as years, yyyymmdd or unix time.
func isSerialDate(s string) bool {
	whole, frac, _ := strings.Cut(s, ".")
	if len(whole) != 5 {
		return false
	}
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DecodeArticle normalizes one raw-export row into an Article.
// Rows without a url are rejected with ErrMissingURL.
func DecodeArticle(t *Table, row int) (domain.Article, error) {
	cell := func(col string) string {
		v, _ := t.Get(row, col)
		return v
	}

	url := Text(cell(ColURL))
	if !url.Valid {
		return domain.Article{}, ErrMissingURL
	}

	article := domain.Article{
		URL:       url.V,
		Title:     Text(cell(ColTitle)),
		Contents:  Text(cell(ColContents)),
		Thumbnail: Text(cell(ColThumbnail)),
		Company:   Text(cell(ColCompany)),
		Subject:   Text(cell(ColSubject)),
		Keyword:   Text(cell(ColKeyword)),
	}

	var err error
	if article.UploadDate, err = Time(cell(ColUploadDate)); err != nil {
		return domain.Article{}, fmt.Errorf("%s: %w", ColUploadDate, err)
	}
	if article.ClusterID, err = Int(cell(ColCluster)); err != nil {
		return domain.Article{}, fmt.Errorf("%s: %w", ColCluster, err)
	}
	if article.Counts, err = Int(cell(ColCounts)); err != nil {
		return domain.Article{}, fmt.Errorf("%s: %w", ColCounts, err)
	}

	return article, nil
}
