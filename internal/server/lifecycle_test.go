package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder collects the order in which services stop.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

type fakeService struct {
	name    string
	rec     *recorder
	started chan struct{}
	quit    chan struct{}
	once    sync.Once
	err     error
}

func newFake(name string, rec *recorder) *fakeService {
	return &fakeService{name: name, rec: rec, started: make(chan struct{}), quit: make(chan struct{})}
}

func (f *fakeService) Serve(ctx context.Context) error {
	close(f.started)
	if f.err != nil {
		return f.err
	}
	select {
	case <-ctx.Done():
	case <-f.quit:
	}
	return nil
}

func (f *fakeService) Stop() {
	f.once.Do(func() {
		f.rec.add(f.name)
		close(f.quit)
	})
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	rec := &recorder{}
	a, b := newFake("a", rec), newFake("b", rec)
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("a", a)
	lc.Add("b", b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	<-a.started
	<-b.started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}
	assert.Equal(t, []string{"b", "a"}, rec.order)
}

func TestLifecycle_ServiceFailureStopsAll(t *testing.T) {
	rec := &recorder{}
	healthy := newFake("healthy", rec)
	broken := newFake("broken", rec)
	broken.err = errors.New("port in use")

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("healthy", healthy)
	lc.Add("broken", broken)

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "service broken: port in use")
	assert.ElementsMatch(t, []string{"healthy", "broken"}, rec.order)
}

func TestLifecycle_NoServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, lc.Run(ctx))
}
