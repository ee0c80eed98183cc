package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kimseungO/news-sum/internal/domain"
	"github.com/kimseungO/news-sum/internal/snapshot"
)

type memTables struct {
	mu      sync.Mutex
	tables  map[string]*snapshot.Table
	saved   map[string]*snapshot.Table
	saveErr error
}

func newMemTables() *memTables {
	return &memTables{tables: map[string]*snapshot.Table{}, saved: map[string]*snapshot.Table{}}
}

func (m *memTables) put(path string, records [][]string) {
	t, err := snapshot.FromRecords(records)
	if err != nil {
		panic(err)
	}
	m.tables[path] = t
}

func (m *memTables) Load(path string) (*snapshot.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return t, nil
}

func (m *memTables) Save(path string, t *snapshot.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[path] = t
	return nil
}

type fakeGenerator struct {
	calls    []string
	replies  map[string]string
	errs     map[string]error
	fallback string
}

func (g *fakeGenerator) Generate(_ context.Context, text string) (string, error) {
	g.calls = append(g.calls, text)
	if err, ok := g.errs[text]; ok {
		return "", err
	}
	if reply, ok := g.replies[text]; ok {
		return reply, nil
	}
	return g.fallback, nil
}

type memSummaries struct {
	rows   map[int64]domain.Summary
	writes int
	failOn map[int64]bool
}

func newMemSummaries() *memSummaries {
	return &memSummaries{rows: map[int64]domain.Summary{}, failOn: map[int64]bool{}}
}

func (m *memSummaries) Upsert(_ context.Context, s domain.Summary) error {
	if m.failOn[s.TopicID] {
		return errors.New("deadlock detected")
	}
	m.writes++
	m.rows[s.TopicID] = s
	return nil
}

type memRaw struct {
	rows   map[string]domain.Article
	failOn map[string]bool
}

func newMemRaw() *memRaw {
	return &memRaw{rows: map[string]domain.Article{}, failOn: map[string]bool{}}
}

func (m *memRaw) Upsert(_ context.Context, a domain.Article) (domain.UpsertResult, error) {
	if m.failOn[a.URL] {
		return "", errors.New("data too long for column")
	}
	_, exists := m.rows[a.URL]
	m.rows[a.URL] = a
	if exists {
		return domain.Updated, nil
	}
	return domain.Inserted, nil
}

type recordingNotifier struct {
	digests []string
	err     error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

type recordingRecorder struct {
	loads     [][3]int
	summaries [][3]int
}

func (r *recordingRecorder) RecordLoad(_ context.Context, inserted, updated, failed int, _ time.Duration) error {
	r.loads = append(r.loads, [3]int{inserted, updated, failed})
	return nil
}

func (r *recordingRecorder) RecordSummarize(_ context.Context, persisted, skipped, failed int, _ time.Duration) error {
	r.summaries = append(r.summaries, [3]int{persisted, skipped, failed})
	return nil
}

type markupExtractor struct{}

func (markupExtractor) PlainText(s string) string {
	if s == "<p>markup</p>" {
		return "markup"
	}
	return s
}
