package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/infrastructure/parser"
	"github.com/kimseungO/news-sum/internal/snapshot"
)

const okReply = `{"title":"T","sum_contents":"S","keyword":["a","b","c"]}`

var fixedNow = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

func newTestSummarizer(tables *memTables, gen *fakeGenerator, repo *memSummaries) *Summarizer {
	return NewSummarizer(SummarizerDeps{
		Tables:     tables,
		Generator:  gen,
		Repository: repo,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestSummarizerScenario(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{
		{"title", "contents", "cluster2nd"},
		{"noise", "x", "0"},
		{"one", "a", "5"},
		{"two", "b", "5"},
	})
	gen := &fakeGenerator{fallback: okReply}
	repo := newMemSummaries()

	report, err := newTestSummarizer(tables, gen, repo).Run(context.Background(), "in.xlsx", "out.xlsx")
	require.NoError(t, err)

	require.Equal(t, []string{"a\n\nb"}, gen.calls)
	require.Len(t, repo.rows, 1)

	got := repo.rows[5]
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "S", got.Content)
	assert.Equal(t, "a, b, c", got.Keyword)
	assert.EqualValues(t, 2, got.NewCnt)
	assert.Equal(t, fixedNow, got.SumDate)

	assert.Equal(t, 1, report.Persisted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	noise, ok := report.Outcome(0)
	require.True(t, ok)
	assert.Equal(t, domain.StateSkipped, noise.State)
	assert.Equal(t, domain.CauseNoise, noise.Cause)

	out := tables.saved["out.xlsx"]
	require.NotNil(t, out)
	assert.Equal(t, 3, out.Len())

	v, _ := out.Get(0, snapshot.ColSumTitle)
	assert.Empty(t, v, "noise row is not annotated")
	for _, row := range []int{1, 2} {
		v, _ = out.Get(row, snapshot.ColSumTitle)
		assert.Equal(t, "T", v)
		v, _ = out.Get(row, snapshot.ColKeyword)
		assert.Equal(t, "a, b, c", v)
		v, _ = out.Get(row, snapshot.ColSumDate)
		assert.Equal(t, "2025-03-14 08:00:00", v)
	}
}

func TestSummarizerSkipsClusterWithoutContent(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.csv", [][]string{
		{"contents", "cluster2nd"},
		{"", "3"},
		{"nan", "3"},
		{"  ", "3"},
	})
	gen := &fakeGenerator{fallback: okReply}
	repo := newMemSummaries()

	report, err := newTestSummarizer(tables, gen, repo).Run(context.Background(), "in.csv", "out.csv")
	require.NoError(t, err)

	assert.Empty(t, gen.calls)
	assert.Empty(t, repo.rows)
	o, _ := report.Outcome(3)
	assert.Equal(t, domain.StateSkipped, o.State)
	assert.Equal(t, domain.CauseNoContent, o.Cause)
}

func TestSummarizerIsolatesClusterFailures(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{
		{"contents", "cluster2nd"},
		{"bad json", "1"},
		{"empty", "2"},
		{"boom", "3"},
		{"fenced", "4"},
		{"missing", "5"},
		{"db", "6"},
		{"fine", "7"},
	})
	gen := &fakeGenerator{
		replies: map[string]string{
			"bad json": "{not json",
			"empty":    "   ",
			"fenced":   "```json\n" + okReply + "\n```",
			"missing":  `{"title":"T","keyword":["k"]}`,
			"db":       okReply,
			"fine":     okReply,
		},
		errs: map[string]error{"boom": errors.New("503 unavailable")},
	}
	repo := newMemSummaries()
	repo.failOn[6] = true

	report, err := newTestSummarizer(tables, gen, repo).Run(context.Background(), "in.xlsx", "out.xlsx")
	require.NoError(t, err)

	causes := map[int64]domain.Cause{}
	for _, o := range report.Clusters {
		causes[o.ClusterID] = o.Cause
	}
	assert.Equal(t, domain.CauseParseError, causes[1])
	assert.Equal(t, domain.CauseEmptyResponse, causes[2])
	assert.Equal(t, domain.CauseInvokeError, causes[3])
	assert.Equal(t, domain.CauseNone, causes[4])
	assert.Equal(t, domain.CauseParseError, causes[5])
	assert.Equal(t, domain.CausePersistError, causes[6])
	assert.Equal(t, domain.CauseNone, causes[7])

	assert.Len(t, gen.calls, 7)
	assert.Equal(t, 2, report.Persisted)
	assert.Equal(t, 5, report.Failed)
	assert.Contains(t, repo.rows, int64(4))
	assert.Contains(t, repo.rows, int64(7))

	// persist failure still leaves the snapshot annotated
	out := tables.saved["out.xlsx"]
	v, _ := out.Get(5, snapshot.ColSumTitle)
	assert.Equal(t, "T", v)
	v, _ = out.Get(0, snapshot.ColSumTitle)
	assert.Empty(t, v)
}

func TestSummarizerRerunUpsertsSameTopic(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{
		{"contents", "cluster2nd"},
		{"a", "5"},
		{"b", "9"},
		{"c", "0"},
	})
	gen := &fakeGenerator{fallback: okReply}
	repo := newMemSummaries()
	s := newTestSummarizer(tables, gen, repo)

	for range 2 {
		_, err := s.Run(context.Background(), "in.xlsx", "out.xlsx")
		require.NoError(t, err)
	}

	assert.Len(t, repo.rows, 2)
	assert.Equal(t, 4, repo.writes)
}

func TestSummarizerClusterOrderAndGrouping(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{
		{"contents", "cluster2nd", "counts"},
		{"late", "10.0", ""},
		{"first", "2", "nan"},
		{"unclustered", "", "1"},
		{"garbage", "two", "1"},
		{"second", "2", "7"},
		{"<p>markup</p>", "10", "3.0"},
	})
	gen := &fakeGenerator{fallback: okReply}
	repo := newMemSummaries()
	s := NewSummarizer(SummarizerDeps{
		Tables:     tables,
		Generator:  gen,
		Repository: repo,
		Extractor:  markupExtractor{},
	})

	_, err := s.Run(context.Background(), "in.xlsx", "out.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"first\n\nsecond", "late\n\nmarkup"}, gen.calls)
	assert.EqualValues(t, 7, repo.rows[2].NewCnt, "first present counts wins")
	assert.EqualValues(t, 3, repo.rows[10].NewCnt)
}

func TestNewCountFallsBackToMemberCount(t *testing.T) {
	t.Parallel()

	table, err := snapshot.FromRecords([][]string{
		{"contents", "cluster2nd"},
		{"a", "1"}, {"", "1"}, {"c", "1"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, newCount(table, []int{0, 1, 2}))
}

func TestSummarizerFatalErrors(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("nocluster.xlsx", [][]string{{"contents"}, {"a"}})
	s := newTestSummarizer(tables, &fakeGenerator{}, newMemSummaries())

	_, err := s.Run(context.Background(), "missing.xlsx", "out.xlsx")
	assert.Error(t, err)

	_, err = s.Run(context.Background(), "nocluster.xlsx", "out.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster2nd")
	assert.Empty(t, tables.saved)
}

func TestSummarizerSaveFailure(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{{"contents", "cluster2nd"}, {"a", "1"}})
	tables.saveErr = errors.New("disk full")
	repo := newMemSummaries()

	_, err := newTestSummarizer(tables, &fakeGenerator{fallback: okReply}, repo).
		Run(context.Background(), "in.xlsx", "out.xlsx")
	require.Error(t, err)
	assert.Len(t, repo.rows, 1, "store writes happen before the snapshot is saved")
}

func TestSummarizerHonoursCancellationDuringDelay(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{{"contents", "cluster2nd"}, {"a", "1"}, {"b", "2"}})
	gen := &fakeGenerator{fallback: okReply}

	s := NewSummarizer(SummarizerDeps{
		Tables:     tables,
		Generator:  gen,
		Repository: newMemSummaries(),
		Delay:      time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report, err := s.Run(ctx, "in.xlsx", "out.xlsx")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, gen.calls)
	assert.Equal(t, 1, report.Failed)
	assert.NotNil(t, tables.saved["out.xlsx"], "partial snapshot is still written")
}

func TestSummarizerPublishesReport(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{{"contents", "cluster2nd"}, {"a", "1"}, {"x", "0"}})
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	recorder := &recordingRecorder{}

	s := NewSummarizer(SummarizerDeps{
		Tables:     tables,
		Generator:  &fakeGenerator{fallback: okReply},
		Repository: newMemSummaries(),
		Notifier:   notifier,
		Recorder:   recorder,
	})

	_, err := s.Run(context.Background(), "in.xlsx", "out.xlsx")
	require.NoError(t, err, "notification errors never fail the run")

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "persisted: 1")
	assert.Contains(t, notifier.digests[0], "- [1] T")
	assert.Equal(t, [][3]int{{1, 1, 0}}, recorder.summaries)
}

func TestSummarizerKeepsBracketedTextWithExtractor(t *testing.T) {
	t.Parallel()

	tables := newMemTables()
	tables.put("in.xlsx", [][]string{
		{"contents", "cluster2nd"},
		{"<KBS 뉴스> 금리 동결", "5"},
		{"<YTN>", "7"},
		{"<p></p>", "8"},
	})
	gen := &fakeGenerator{fallback: okReply}
	s := NewSummarizer(SummarizerDeps{
		Tables:     tables,
		Generator:  gen,
		Repository: newMemSummaries(),
		Extractor:  parser.NewHTMLExtractor(),
	})

	report, err := s.Run(context.Background(), "in.xlsx", "out.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"<KBS 뉴스> 금리 동결", "<YTN>", "<p></p>"}, gen.calls)
	assert.Equal(t, 3, report.Persisted)
	assert.Zero(t, report.Skipped)
}
