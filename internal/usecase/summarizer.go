package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/ports"
	"github.com/kimseungO/news-sum/internal/snapshot"
)

// SumDateLayout is how sum_date is written into the output snapshot.
const SumDateLayout = "2006-01-02 15:04:05"

// SummarizerDeps wires the driven adapters the cluster pipeline needs.
type SummarizerDeps struct {
	Tables     ports.TableStore
	Generator  ports.SummaryGenerator
	Repository ports.SummaryRepository
	Extractor  ports.TextExtractor
	Notifier   ports.Notifier
	Recorder   ports.RunRecorder
	Logger     *slog.Logger
	// Delay is waited before every model call.
	Delay time.Duration
	Now   func() time.Time
}

// Summarizer turns each cluster of the preprocessed snapshot into one
// summary record.
type Summarizer struct {
	tables     ports.TableStore
	generator  ports.SummaryGenerator
	repository ports.SummaryRepository
	extractor  ports.TextExtractor
	notifier   ports.Notifier
	recorder   ports.RunRecorder
	logger     *slog.Logger
	delay      time.Duration
	now        func() time.Time
}

// NewSummarizer constructs the summarizer use case.
func NewSummarizer(deps SummarizerDeps) *Summarizer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Summarizer{
		tables:     deps.Tables,
		generator:  deps.Generator,
		repository: deps.Repository,
		extractor:  deps.Extractor,
		notifier:   deps.Notifier,
		recorder:   deps.Recorder,
		logger:     logger,
		delay:      deps.Delay,
		now:        now,
	}
}

// Run processes every cluster of input in ascending id order and writes the
// annotated snapshot to output once at the end. A failing cluster never
// stops the run.
func (s *Summarizer) Run(ctx context.Context, input, output string) (SummarizeReport, error) {
	started := time.Now()
	var report SummarizeReport

	table, err := s.tables.Load(input)
	if err != nil {
		return report, fmt.Errorf("load snapshot: %w", err)
	}
	if err := table.Require(snapshot.ColContents, snapshot.ColCluster); err != nil {
		return report, fmt.Errorf("snapshot %s: %w", input, err)
	}

	groups, order := s.groupClusters(table)
	s.logger.Info("summarizing clusters", "input", input, "rows", table.Len(), "clusters", len(order))

	var interrupted error
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}
		outcome := s.processCluster(ctx, table, id, groups[id])
		s.logOutcome(outcome)
		report.add(outcome)
	}

	table.EnsureColumns(snapshot.ColSumTitle, snapshot.ColSumContents, snapshot.ColKeyword, snapshot.ColSumDate)
	if err := s.tables.Save(output, table); err != nil {
		report.Took = time.Since(started)
		return report, fmt.Errorf("save snapshot: %w", err)
	}

	report.Took = time.Since(started)
	s.logger.Info("summarizer finished",
		"persisted", report.Persisted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"output", output,
		"took", report.Took.Round(time.Millisecond))

	if interrupted != nil {
		return report, fmt.Errorf("summarizer interrupted: %w", interrupted)
	}

	s.publish(ctx, report)
	return report, nil
}

// groupClusters maps cluster id to member row indexes, keeping row order.
// Rows without a usable cluster id belong to no group.
func (s *Summarizer) groupClusters(table *snapshot.Table) (map[int64][]int, []int64) {
	groups := map[int64][]int{}
	for row := 0; row < table.Len(); row++ {
		cell, _ := table.Get(row, snapshot.ColCluster)
		id, err := snapshot.Int(cell)
		if err != nil {
			s.logger.Warn("row has invalid cluster id", "row", row, "value", cell)
			continue
		}
		if !id.Valid {
			continue
		}
		groups[id.V] = append(groups[id.V], row)
	}

	order := make([]int64, 0, len(groups))
	for id := range groups {
		order = append(order, id)
	}
	slices.Sort(order)
	return groups, order
}

func (s *Summarizer) processCluster(ctx context.Context, table *snapshot.Table, id int64, rows []int) domain.ClusterOutcome {
	outcome := domain.ClusterOutcome{ClusterID: id, Members: len(rows)}

	if id == domain.NoiseClusterID {
		outcome.State, outcome.Cause = domain.StateSkipped, domain.CauseNoise
		return outcome
	}

	composed := s.compose(table, rows)
	if composed == "" {
		outcome.State, outcome.Cause = domain.StateSkipped, domain.CauseNoContent
		return outcome
	}

	if err := s.wait(ctx); err != nil {
		return failed(outcome, domain.CauseInvokeError, err)
	}

	s.logger.Info("requesting summary", "cluster_id", id, "articles", len(rows), "chars", len(composed))
	raw, err := s.generator.Generate(ctx, composed)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResponse) {
			return failed(outcome, domain.CauseEmptyResponse, err)
		}
		return failed(outcome, domain.CauseInvokeError, err)
	}

	draft, err := parseDraft(raw)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResponse) {
			return failed(outcome, domain.CauseEmptyResponse, err)
		}
		return failed(outcome, domain.CauseParseError, err)
	}

	summary := domain.Summary{
		TopicID: id,
		Title:   draft.Title,
		Content: draft.Content,
		NewCnt:  newCount(table, rows),
		SumDate: s.now(),
		Keyword: draft.JoinedKeywords(),
	}
	outcome.Summary = &summary

	writeBack(table, rows, summary)

	if err := s.repository.Upsert(ctx, summary); err != nil {
		return failed(outcome, domain.CausePersistError, err)
	}

	outcome.State = domain.StatePersisted
	return outcome
}

// compose joins the non-empty contents of the member rows with a blank line.
// Emptiness is judged on the raw cell; extracted text only replaces a body
// when something is left of it.
func (s *Summarizer) compose(table *snapshot.Table, rows []int) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		cell, _ := table.Get(row, snapshot.ColContents)
		text := snapshot.Text(cell)
		if !text.Valid {
			continue
		}
		body := text.V
		if s.extractor != nil {
			if plain := strings.TrimSpace(s.extractor.PlainText(body)); plain != "" {
				body = plain
			}
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n")
}

func (s *Summarizer) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// newCount takes the first present counts value among the member rows and
// falls back to the number of member rows.
func newCount(table *snapshot.Table, rows []int) int64 {
	for _, row := range rows {
		cell, ok := table.Get(row, snapshot.ColCounts)
		if !ok {
			break
		}
		if n, err := snapshot.Int(cell); err == nil && n.Valid {
			return n.V
		}
	}
	return int64(len(rows))
}

func writeBack(table *snapshot.Table, rows []int, summary domain.Summary) {
	date := summary.SumDate.Format(SumDateLayout)
	for _, row := range rows {
		table.Set(row, snapshot.ColSumTitle, summary.Title)
		table.Set(row, snapshot.ColSumContents, summary.Content)
		table.Set(row, snapshot.ColKeyword, summary.Keyword)
		table.Set(row, snapshot.ColSumDate, date)
	}
}

func failed(o domain.ClusterOutcome, cause domain.Cause, err error) domain.ClusterOutcome {
	o.State, o.Cause, o.Err = domain.StateFailed, cause, err
	return o
}

func (s *Summarizer) logOutcome(o domain.ClusterOutcome) {
	switch o.State {
	case domain.StatePersisted:
		s.logger.Info("cluster persisted",
			"cluster_id", o.ClusterID,
			"title", o.Summary.Title,
			"summary_chars", len([]rune(o.Summary.Content)),
			"keywords", o.Summary.Keyword,
			"new_cnt", o.Summary.NewCnt)
	case domain.StateSkipped:
		s.logger.Info("cluster skipped", "cluster_id", o.ClusterID, "cause", o.Cause, "rows", o.Members)
	case domain.StateFailed:
		s.logger.Error("cluster failed", "cluster_id", o.ClusterID, "cause", o.Cause, "error", o.Err)
	}
}

func (s *Summarizer) publish(ctx context.Context, report SummarizeReport) {
	if s.recorder != nil {
		if err := s.recorder.RecordSummarize(ctx, report.Persisted, report.Skipped, report.Failed, report.Took); err != nil {
			s.logger.Warn("push summarize metrics", "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PublishDigest(ctx, buildSummaryDigest(report)); err != nil {
			s.logger.Warn("publish summarize report", "error", err)
		}
	}
}
