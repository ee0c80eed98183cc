package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/kimseungO/news-sum/internal/domain"
)

// LoadReport is the loader tally for one run.
type LoadReport struct {
	Total    int
	Inserted int
	Updated  int
	Failed   int
	Rows     []domain.RowOutcome
	Took     time.Duration
}

func (r *LoadReport) add(o domain.RowOutcome) {
	r.Total++
	r.Rows = append(r.Rows, o)
	switch {
	case o.Failed():
		r.Failed++
	case o.Result == domain.Updated:
		r.Updated++
	default:
		r.Inserted++
	}
}

// SummarizeReport is the per-cluster tally for one run.
type SummarizeReport struct {
	Persisted int
	Skipped   int
	Failed    int
	Clusters  []domain.ClusterOutcome
	Took      time.Duration
}

func (r *SummarizeReport) add(o domain.ClusterOutcome) {
	r.Clusters = append(r.Clusters, o)
	switch o.State {
	case domain.StatePersisted:
		r.Persisted++
	case domain.StateSkipped:
		r.Skipped++
	case domain.StateFailed:
		r.Failed++
	}
}

// Outcome returns the recorded outcome for a cluster id.
func (r SummarizeReport) Outcome(clusterID int64) (domain.ClusterOutcome, bool) {
	for _, o := range r.Clusters {
		if o.ClusterID == clusterID {
			return o, true
		}
	}
	return domain.ClusterOutcome{}, false
}

// buildLoadDigest renders the loader tally as a notification message.
func buildLoadDigest(r LoadReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "news_raw load\nrows: %d\ninserted: %d\nupdated: %d\nfailed: %d\ntook: %s\n",
		r.Total, r.Inserted, r.Updated, r.Failed, r.Took.Round(time.Millisecond))

	for _, o := range r.Rows {
		if o.Failed() {
			fmt.Fprintf(&b, "- row %d %s: %v\n", o.Row, o.URL, o.Err)
		}
	}
	return b.String()
}

// buildSummaryDigest renders the summarizer tally plus every persisted title.
func buildSummaryDigest(r SummarizeReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "news_sum run\npersisted: %d\nskipped: %d\nfailed: %d\ntook: %s\n",
		r.Persisted, r.Skipped, r.Failed, r.Took.Round(time.Millisecond))

	for _, o := range r.Clusters {
		switch o.State {
		case domain.StatePersisted:
			fmt.Fprintf(&b, "- [%d] %s\n", o.ClusterID, o.Summary.Title)
		case domain.StateFailed:
			fmt.Fprintf(&b, "- [%d] failed: %s\n", o.ClusterID, o.Cause)
		}
	}
	return b.String()
}
