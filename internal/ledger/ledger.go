package ledger

import (
	"context"

	"github.com/campuscore/approval-service/internal/model"
)

// Ledger tracks countable capacity per resource and owns the counters
// exclusively. All capacity math is serialized per resourceId, so
// reserved + consumed never exceeds total even under concurrent callers.
type Ledger interface {
	// Register creates the ledger entry for a book title or store item.
	Register(ctx context.Context, res model.Resource) (model.Resource, error)
	Get(ctx context.Context, resourceID string) (model.Resource, error)
	// Availability is total - reserved - consumed, never negative.
	Availability(ctx context.Context, resourceID string) (int, error)

	// Reserve places a provisional hold and returns its token.
	Reserve(ctx context.Context, resourceID string, qty int) (string, error)
	// Consume moves a reservation from reserved to consumed.
	Consume(ctx context.Context, token string) error
	// Release returns reserved units to availability. Releasing a token
	// that was already released or consumed is a no-op.
	Release(ctx context.Context, token string) error

	Restock(ctx context.Context, resourceID string, qty int) error
	// ReturnUnits hands consumed units back on a return of an issued
	// book or item.
	ReturnUnits(ctx context.Context, resourceID string, qty int) error
}
