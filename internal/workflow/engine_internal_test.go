package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/events"
	"github.com/campuscore/approval-service/internal/ledger"
	"github.com/campuscore/approval-service/internal/model"
	"github.com/campuscore/approval-service/internal/repository"
)

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

func strRef(s string) *string { return &s }

// Closed requests must not pin a mutex in the lock map; issued books
// keep theirs until the return closes them out.
func TestEngine_LockPruning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ldg := ledger.NewMemory()
	repo := repository.NewMemory()
	e := New(repo, ldg, nopPublisher{}, zap.NewNop(), Config{LoanPeriodDays: 14, FineRatePerDay: 5})

	_, err := ldg.Register(ctx, model.Resource{
		ResourceID:    "sicp",
		Kind:          model.KindBook,
		TotalCapacity: 1,
	})
	require.NoError(t, err)

	leave, err := e.Submit(ctx, model.SubmitRequest{
		RequesterID:   "st-1",
		RequesterRole: model.RoleStudent,
		Kind:          model.KindLeave,
	})
	require.NoError(t, err)
	_, err = e.Review(ctx, leave.ID, model.ReviewRequest{
		ActorID: "tch-1", ActorRole: model.RoleTeacher, Decision: model.DecisionReject,
	})
	require.NoError(t, err)
	_, held := e.locks.Load(leave.ID)
	require.False(t, held, "rejected request keeps a lock entry")

	book, err := e.Submit(ctx, model.SubmitRequest{
		RequesterID:   "st-1",
		RequesterRole: model.RoleStudent,
		Kind:          model.KindBook,
		ResourceRef:   strRef("sicp"),
		Quantity:      1,
	})
	require.NoError(t, err)
	_, err = e.Review(ctx, book.ID, model.ReviewRequest{
		ActorID: "lib-1", ActorRole: model.RoleLibrarian, Decision: model.DecisionApprove,
	})
	require.NoError(t, err)
	_, held = e.locks.Load(book.ID)
	require.True(t, held, "issued book must stay locked until returned")

	_, err = e.Return(ctx, book.ID)
	require.NoError(t, err)
	_, held = e.locks.Load(book.ID)
	require.False(t, held, "returned book keeps a lock entry")
}
