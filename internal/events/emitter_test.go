package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/events"
)

type recorder struct {
	mu       sync.Mutex
	byReq    map[string][]events.Kind
	failures int // fail this many deliveries before succeeding
	calls    int
}

func (r *recorder) Handle(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failures > 0 {
		r.failures--
		return errors.New("listener flake")
	}
	if r.byReq == nil {
		r.byReq = make(map[string][]events.Kind)
	}
	r.byReq[ev.RequestID] = append(r.byReq[ev.RequestID], ev.Kind)
	return nil
}

func TestEmitter_PerRequestOrdering(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	em := events.NewEmitter(zap.NewNop(), rec)

	now := time.Now()
	sequence := []events.Kind{
		events.KindSubmitted,
		events.KindStepApproved,
		events.KindStepApproved,
		events.KindFulfilled,
	}
	for _, kind := range sequence {
		em.Publish(events.New(kind, "req-a", now, nil))
		em.Publish(events.New(kind, "req-b", now, nil))
	}
	em.Close()

	require.Equal(t, sequence, rec.byReq["req-a"])
	require.Equal(t, sequence, rec.byReq["req-b"])
}

func TestEmitter_RetriesFlakyListener(t *testing.T) {
	t.Parallel()
	rec := &recorder{failures: 2}
	em := events.NewEmitter(zap.NewNop(), rec)

	em.Publish(events.New(events.KindSubmitted, "req-a", time.Now(), nil))
	em.Close()

	require.Equal(t, []events.Kind{events.KindSubmitted}, rec.byReq["req-a"])
	require.Equal(t, 3, rec.calls)
}

func TestEmitter_ConcurrentPublishers(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	em := events.NewEmitter(zap.NewNop(), rec)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			em.Publish(events.New(events.KindStepApproved, "req-x", time.Now(), nil))
		}()
	}
	wg.Wait()
	em.Close()

	require.Len(t, rec.byReq["req-x"], 20)
}

func TestEmitter_PublishAfterCloseDropped(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	em := events.NewEmitter(zap.NewNop(), rec)
	em.Close()

	em.Publish(events.New(events.KindSubmitted, "req-a", time.Now(), nil))
	require.Nil(t, rec.byReq["req-a"])
}
