package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prixtn/pricewatch/internal/scraper"
)

type runRecorder struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
}

func (r *runRecorder) run(ctx context.Context, supplier, category string, startPage int) (scraper.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := supplier + "/" + category
	r.calls = append(r.calls, key)
	if err := r.errs[key]; err != nil {
		return scraper.Stats{}, err
	}
	return scraper.Stats{PagesVisited: 1, Saved: 2}, nil
}

type trimRecorder struct {
	trims int
}

func (p *trimRecorder) Publish(key string, message []byte) error { return nil }
func (p *trimRecorder) TrimStreams() error                       { p.trims++; return nil }
func (p *trimRecorder) Close() error                             { return nil }

func testJobs() []Job {
	return []Job{
		{Supplier: "tunisianet", Category: "pc-portable", StartPage: 1},
		{Supplier: "mytek", Category: "smartphone", StartPage: 1},
		{Supplier: "scoop", Category: "tablette", StartPage: 1},
	}
}

func TestWorkerSingleSweep(t *testing.T) {
	rec := &runRecorder{}
	w := NewWorker(context.Background(), testJobs(), rec.run, nil, 0)

	require.NoError(t, w.Start())

	assert.Len(t, rec.calls, 3)
	assert.ElementsMatch(t, []string{"tunisianet/pc-portable", "mytek/smartphone", "scoop/tablette"}, rec.calls)
}

func TestWorkerJobFailureDoesNotAbortSweep(t *testing.T) {
	rec := &runRecorder{errs: map[string]error{
		"mytek/smartphone": errors.New("site down"),
	}}
	w := NewWorker(context.Background(), testJobs(), rec.run, nil, 0)

	require.NoError(t, w.Start(), "a failed job is logged, not returned")
	assert.Len(t, rec.calls, 3)
}

func TestWorkerTrimsStreamsAfterSweep(t *testing.T) {
	rec := &runRecorder{}
	pub := &trimRecorder{}
	w := NewWorker(context.Background(), testJobs(), rec.run, pub, 0)

	require.NoError(t, w.Start())
	assert.Equal(t, 1, pub.trims)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &runRecorder{}
	w := NewWorker(ctx, testJobs(), rec.run, nil, time.Hour)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	// Let the first sweep finish, then cancel during the interval wait.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	assert.Len(t, rec.calls, 3, "exactly one sweep before the cancel")
}
