package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/ledger"
	"github.com/campuscore/approval-service/internal/model"
)

func newBookLedger(t *testing.T, capacity int) *ledger.Memory {
	t.Helper()
	l := ledger.NewMemory()
	_, err := l.Register(context.Background(), model.Resource{
		ResourceID:    "clean-code",
		Kind:          model.KindBook,
		Name:          "Clean Code",
		TotalCapacity: capacity,
	})
	require.NoError(t, err)
	return l
}

func TestMemory_ReserveConsumeRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newBookLedger(t, 10)

	token, err := l.Reserve(ctx, "clean-code", 3)
	require.NoError(t, err)

	avail, err := l.Availability(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 7, avail)

	require.NoError(t, l.Consume(ctx, token))
	res, err := l.Get(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 0, res.ReservedCount)
	require.Equal(t, 3, res.ConsumedCount)

	// consuming twice is a token misuse
	require.ErrorIs(t, l.Consume(ctx, token), errs.ErrInvalidToken)
	// releasing a consumed token is a no-op
	require.NoError(t, l.Release(ctx, token))
	res, err = l.Get(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 3, res.ConsumedCount)

	require.NoError(t, l.ReturnUnits(ctx, "clean-code", 3))
	avail, err = l.Availability(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 10, avail)
}

func TestMemory_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newBookLedger(t, 1)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "reserve over capacity",
			call: func() error {
				_, err := l.Reserve(ctx, "clean-code", 2)
				return err
			},
			wantErr: errs.ErrInsufficientCapacity,
		},
		{
			name: "reserve unknown resource",
			call: func() error {
				_, err := l.Reserve(ctx, "ghost", 1)
				return err
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "duplicate register",
			call: func() error {
				_, err := l.Register(ctx, model.Resource{ResourceID: "clean-code", Kind: model.KindBook, TotalCapacity: 1})
				return err
			},
			wantErr: errs.ErrDuplicateResource,
		},
		{
			name:    "release token that never existed",
			call:    func() error { return l.Release(ctx, "nope") },
			wantErr: errs.ErrInvalidToken,
		},
		{
			name:    "consume token that never existed",
			call:    func() error { return l.Consume(ctx, "nope") },
			wantErr: errs.ErrInvalidToken,
		},
		{
			name:    "return more than consumed",
			call:    func() error { return l.ReturnUnits(ctx, "clean-code", 1) },
			wantErr: errs.ErrInvalidTransition,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), tt.wantErr)
		})
	}
}

func TestMemory_ReleaseRestoresAvailability(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newBookLedger(t, 2)

	token, err := l.Reserve(ctx, "clean-code", 2)
	require.NoError(t, err)

	_, err = l.Reserve(ctx, "clean-code", 1)
	require.ErrorIs(t, err, errs.ErrInsufficientCapacity)

	require.NoError(t, l.Release(ctx, token))
	// double release is a no-op
	require.NoError(t, l.Release(ctx, token))

	avail, err := l.Availability(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 2, avail)
}

// Concurrent submissions must never overbook: with capacity 1 exactly one
// of the racing reservations wins.
func TestMemory_ConcurrentReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const capacity = 5
	l := newBookLedger(t, capacity)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Reserve(ctx, "clean-code", 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, capacity, won)
	avail, err := l.Availability(ctx, "clean-code")
	require.NoError(t, err)
	require.Equal(t, 0, avail)
}

// Property: whatever sequence of reserve/consume/release/restock/return is
// applied, 0 <= reserved + consumed <= total holds and availability is
// never negative.
func TestMemory_CapacityInvariant(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		l := ledger.NewMemory()
		capacity := rapid.IntRange(0, 10).Draw(rt, "capacity")
		_, err := l.Register(ctx, model.Resource{
			ResourceID:    "res",
			Kind:          model.KindItem,
			TotalCapacity: capacity,
		})
		if err != nil {
			rt.Fatal(err)
		}

		var tokens []string
		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				qty := rapid.IntRange(1, 4).Draw(rt, "qty")
				if token, err := l.Reserve(ctx, "res", qty); err == nil {
					tokens = append(tokens, token)
				}
			case 1:
				if len(tokens) > 0 {
					_ = l.Consume(ctx, tokens[rapid.IntRange(0, len(tokens)-1).Draw(rt, "tok")])
				}
			case 2:
				if len(tokens) > 0 {
					_ = l.Release(ctx, tokens[rapid.IntRange(0, len(tokens)-1).Draw(rt, "tok")])
				}
			case 3:
				_ = l.Restock(ctx, "res", rapid.IntRange(1, 3).Draw(rt, "restock"))
			case 4:
				_ = l.ReturnUnits(ctx, "res", rapid.IntRange(1, 3).Draw(rt, "ret"))
			}

			res, err := l.Get(ctx, "res")
			if err != nil {
				rt.Fatal(err)
			}
			if res.ReservedCount < 0 || res.ConsumedCount < 0 {
				rt.Fatalf("negative counter: %+v", res)
			}
			if res.ReservedCount+res.ConsumedCount > res.TotalCapacity {
				rt.Fatalf("overbooked: %+v", res)
			}
			if res.Available() < 0 {
				rt.Fatalf("negative availability: %+v", res)
			}
		}
	})
}
