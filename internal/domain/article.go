package domain

import (
	"database/sql"
	"time"
)

// Article is one row of the raw news export, keyed by URL.
// Optional columns stay explicit so absent cells are never confused with
// zero values when written to the store.
type Article struct {
	URL        string
	Title      sql.Null[string]
	Contents   sql.Null[string]
	Thumbnail  sql.Null[string]
	Company    sql.Null[string]
	Subject    sql.Null[string]
	UploadDate sql.Null[time.Time]
	ClusterID  sql.Null[int64]
	Keyword    sql.Null[string]
	Counts     sql.Null[int64]
}

// UpsertResult tells whether an upsert created a new row or replaced one.
type UpsertResult string

const (
	Inserted UpsertResult = "inserted"
	Updated  UpsertResult = "updated"
)

// Some wraps a present value.
func Some[T any](v T) sql.Null[T] {
	return sql.Null[T]{V: v, Valid: true}
}
