package domain

import (
	"errors"
	"strings"
	"time"
)

// NoiseClusterID marks rows the clustering step could not assign.
const NoiseClusterID int64 = 0

// KeywordSeparator joins model keywords into the stored keyword column.
const KeywordSeparator = ", "

var (
	// ErrEmptyResponse is returned when the model produced no text at all.
	ErrEmptyResponse = errors.New("model returned empty response")
	// ErrMalformedSummary is returned when the model text does not match the
	// {title, sum_contents, keyword} contract.
	ErrMalformedSummary = errors.New("malformed summary response")
)

// Draft is the validated structured output of the model for one cluster.
type Draft struct {
	Title    string
	Content  string
	Keywords []string
}

// JoinedKeywords renders keywords the way they are stored.
func (d Draft) JoinedKeywords() string {
	return strings.Join(d.Keywords, KeywordSeparator)
}

// Summary is the persisted record for one cluster, keyed by TopicID.
type Summary struct {
	TopicID int64
	Title   string
	Content string
	NewCnt  int64
	SumDate time.Time
	Keyword string
}
