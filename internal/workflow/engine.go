package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/events"
	"github.com/campuscore/approval-service/internal/fine"
	"github.com/campuscore/approval-service/internal/ledger"
	"github.com/campuscore/approval-service/internal/model"
	"github.com/campuscore/approval-service/internal/repository"
)

type Config struct {
	LoanPeriodDays int
	FineRatePerDay int
}

// Engine drives a Request through its definition's step sequence. It is
// the only writer of request status and history; capacity counters stay
// behind the ledger. Transitions of one request are serialized on a
// per-request mutex, so a losing concurrent reviewer observes either
// AlreadyResolved or the advanced step.
type Engine struct {
	repo   repository.Requests
	ledger ledger.Ledger
	pub    events.Publisher
	calc   fine.Calculator
	log    *zap.Logger
	cfg    Config
	now    func() time.Time
	defs   map[model.Kind]Definition
	locks  sync.Map // request id -> *sync.Mutex
}

type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithDefinition overrides the step sequence for one kind.
func WithDefinition(def Definition) Option {
	return func(e *Engine) {
		e.defs[def.Kind] = def
	}
}

func (e *Engine) definition(kind model.Kind) (Definition, error) {
	if def, ok := e.defs[kind]; ok {
		return def, nil
	}
	return Lookup(kind)
}

func New(repo repository.Requests, ldg ledger.Ledger, pub events.Publisher, log *zap.Logger, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		ledger: ldg,
		pub:    pub,
		calc:   fine.Calculator{RatePerDay: cfg.FineRatePerDay},
		log:    log.Named("workflow"),
		cfg:    cfg,
		now:    time.Now,
		defs:   make(map[model.Kind]Definition),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// dropLock prunes the request's mutex once no further transition can
// mutate the row, so the map does not grow with closed requests. Issued
// books keep theirs until returned. A racing caller that re-creates the
// entry only observes the terminal row and fails its guard check.
func (e *Engine) dropLock(req model.Request) {
	if req.Status == model.StatusIssued && req.ReturnedAt == nil {
		return
	}
	if req.Status.Terminal() {
		e.locks.Delete(req.ID)
	}
}

type submittedPayload struct {
	Kind        model.Kind `json:"kind"`
	RequesterID string     `json:"requesterId"`
	Quantity    int        `json:"quantity"`
}

type decisionPayload struct {
	ApproverID   string     `json:"approverId"`
	ApproverRole model.Role `json:"approverRole"`
	StepIndex    int        `json:"stepIndex"`
	Comment      string     `json:"comment,omitempty"`
}

type terminalPayload struct {
	Status  model.Status `json:"status"`
	DueDate *time.Time   `json:"dueDate,omitempty"`
}

type finePayload struct {
	Amount   int `json:"amount"`
	DaysLate int `json:"daysLate"`
}

// Submit reserves capacity for resource-backed kinds and creates the
// request. A failed reservation creates no row; a failed row creates no
// reservation.
func (e *Engine) Submit(ctx context.Context, sub model.SubmitRequest) (model.Request, error) {
	def, err := e.definition(sub.Kind)
	if err != nil {
		return model.Request{}, err
	}

	qty := sub.Quantity
	if !def.ResourceBacked {
		qty = 1
	} else if sub.ResourceRef == nil || qty <= 0 {
		return model.Request{}, errors.Wrap(errs.ErrInvalidTransition, "resource-backed request needs resourceRef and quantity")
	}

	now := e.now()
	req := model.Request{
		ID:            uuid.NewString(),
		RequesterID:   sub.RequesterID,
		RequesterRole: sub.RequesterRole,
		Kind:          sub.Kind,
		ResourceRef:   sub.ResourceRef,
		Quantity:      qty,
		Status:        model.StatusPending,
		CreatedAt:     now,
	}

	if def.ResourceBacked {
		token, err := e.ledger.Reserve(ctx, *sub.ResourceRef, qty)
		if err != nil {
			return model.Request{}, err
		}
		req.Token = &token
	}

	if len(def.Steps) == 0 {
		// zero-step sequences auto-approve on submission
		e.finalize(&req, def, now)
	} else {
		role := def.Steps[0]
		req.PendingRole = &role
	}

	if err := e.repo.Create(ctx, req); err != nil {
		e.compensate(ctx, req)
		return model.Request{}, err
	}
	if req.Status != model.StatusPending {
		e.consumeHold(ctx, req)
	}

	e.pub.Publish(events.New(events.KindSubmitted, req.ID, now, submittedPayload{
		Kind:        req.Kind,
		RequesterID: req.RequesterID,
		Quantity:    req.Quantity,
	}))
	if req.Status != model.StatusPending {
		e.pub.Publish(events.New(events.KindFulfilled, req.ID, now, terminalPayload{
			Status:  req.Status,
			DueDate: req.DueDate,
		}))
	}
	return req, nil
}

// compensate returns a submission-time reservation after a later step of
// Submit failed.
func (e *Engine) compensate(ctx context.Context, req model.Request) {
	if req.Token == nil {
		return
	}
	if err := e.ledger.Release(ctx, *req.Token); err != nil {
		e.log.Error("release after failed submit", zap.String("requestId", req.ID), zap.Error(err))
	}
}

// Review applies one approve/reject transition.
func (e *Engine) Review(ctx context.Context, requestID string, rev model.ReviewRequest) (model.Request, error) {
	if rev.Decision != model.DecisionApprove && rev.Decision != model.DecisionReject {
		return model.Request{}, errs.ErrInvalidDecision
	}

	mu := e.lockFor(requestID)
	mu.Lock()
	defer mu.Unlock()

	req, err := e.repo.Get(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if req.Status.Terminal() {
		return model.Request{}, errs.ErrAlreadyResolved
	}
	def, err := e.definition(req.Kind)
	if err != nil {
		return model.Request{}, err
	}
	if rev.ActorRole != def.Steps[req.StepIndex] {
		return model.Request{}, errs.ErrNotAuthorized
	}

	now := e.now()
	step := model.Step{
		RequestID:    req.ID,
		Seq:          len(req.Steps),
		ApproverID:   rev.ActorID,
		ApproverRole: rev.ActorRole,
		Decision:     rev.Decision,
		Comment:      rev.Comment,
		CreatedAt:    now,
	}

	lastStep := req.StepIndex == len(def.Steps)-1
	switch {
	case rev.Decision == model.DecisionReject:
		req.Status = model.StatusRejected
		req.PendingRole = nil
		req.ResolvedAt = &now
	case lastStep:
		e.finalize(&req, def, now)
	default:
		req.StepIndex++
		role := def.Steps[req.StepIndex]
		req.PendingRole = &role
	}
	req.Steps = append(req.Steps, step)

	if err := e.repo.Update(ctx, req, step); err != nil {
		return model.Request{}, err
	}
	e.dropLock(req)

	if req.Status == model.StatusRejected {
		e.releaseHold(ctx, req)
		e.pub.Publish(events.New(events.KindRejected, req.ID, now, decisionPayload{
			ApproverID:   rev.ActorID,
			ApproverRole: rev.ActorRole,
			StepIndex:    step.Seq,
			Comment:      rev.Comment,
		}))
		return req, nil
	}

	if req.Status != model.StatusPending {
		e.consumeHold(ctx, req)
	}

	e.pub.Publish(events.New(events.KindStepApproved, req.ID, now, decisionPayload{
		ApproverID:   rev.ActorID,
		ApproverRole: rev.ActorRole,
		StepIndex:    step.Seq,
		Comment:      rev.Comment,
	}))
	if req.Status != model.StatusPending {
		e.pub.Publish(events.New(events.KindFulfilled, req.ID, now, terminalPayload{
			Status:  req.Status,
			DueDate: req.DueDate,
		}))
	}
	return req, nil
}

// Withdraw is the requester's own cancellation of a still-pending
// request. It behaves like a reject but lands on its own terminal label.
func (e *Engine) Withdraw(ctx context.Context, requestID, requesterID string) (model.Request, error) {
	mu := e.lockFor(requestID)
	mu.Lock()
	defer mu.Unlock()

	req, err := e.repo.Get(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if req.Status.Terminal() {
		return model.Request{}, errs.ErrAlreadyResolved
	}
	if req.RequesterID != requesterID {
		return model.Request{}, errs.ErrNotOwner
	}

	now := e.now()
	req.Status = model.StatusWithdrawn
	req.PendingRole = nil
	req.ResolvedAt = &now

	if err := e.repo.Update(ctx, req); err != nil {
		return model.Request{}, err
	}
	e.dropLock(req)
	e.releaseHold(ctx, req)

	e.pub.Publish(events.New(events.KindWithdrawn, req.ID, now, nil))
	return req, nil
}

// Return closes out an issued book: units go back to the ledger and an
// overdue return freezes its fine.
func (e *Engine) Return(ctx context.Context, requestID string) (model.Request, error) {
	mu := e.lockFor(requestID)
	mu.Lock()
	defer mu.Unlock()

	req, err := e.repo.Get(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if req.Kind != model.KindBook || req.Status != model.StatusIssued || req.ReturnedAt != nil {
		return model.Request{}, errs.ErrNotIssued
	}

	now := e.now()
	overdue := e.calc.IsOverdue(req, now)
	req.ReturnedAt = &now

	if err := e.repo.Update(ctx, req); err != nil {
		return model.Request{}, err
	}
	e.dropLock(req)

	if overdue {
		rec := e.calc.Charge(req, now)
		if err := e.repo.ChargeFine(ctx, rec); err != nil {
			e.log.Error("charge fine", zap.String("requestId", req.ID), zap.Error(err))
		}
		e.pub.Publish(events.New(events.KindOverdue, req.ID, now, finePayload{
			Amount:   rec.Amount,
			DaysLate: rec.DaysLate,
		}))
	}

	if req.ResourceRef != nil {
		if err := e.ledger.ReturnUnits(ctx, *req.ResourceRef, req.Quantity); err != nil {
			e.log.Error("return units", zap.String("requestId", req.ID), zap.Error(err))
		}
	}

	e.pub.Publish(events.New(events.KindReturned, req.ID, now, nil))
	return req, nil
}

// finalize stamps the kind's terminal fields: status, step index and,
// for books, the due date. The reservation is consumed separately, only
// after the terminal row is persisted.
func (e *Engine) finalize(req *model.Request, def Definition, now time.Time) {
	if def.Kind == model.KindBook {
		due := now.AddDate(0, 0, e.cfg.LoanPeriodDays)
		req.DueDate = &due
	}
	req.Status = def.Terminal
	req.StepIndex = len(def.Steps)
	req.PendingRole = nil
	req.ResolvedAt = &now
}

// consumeHold moves the reserved units to consumed once the terminal row
// is persisted. The row is already authoritative; a consume failure here
// is an invariant violation on the ledger side and only gets logged.
func (e *Engine) consumeHold(ctx context.Context, req model.Request) {
	if req.Token == nil {
		return
	}
	if err := e.ledger.Consume(ctx, *req.Token); err != nil {
		e.log.Error("consume reservation", zap.String("requestId", req.ID), zap.Error(err))
	}
}

// releaseHold drops the reservation of a rejected or withdrawn request.
// The row is already terminal; a release failure here is an invariant
// violation on the ledger side and only gets logged.
func (e *Engine) releaseHold(ctx context.Context, req model.Request) {
	if req.Token == nil {
		return
	}
	if err := e.ledger.Release(ctx, *req.Token); err != nil {
		e.log.Error("release reservation", zap.String("requestId", req.ID), zap.Error(err))
	}
}
