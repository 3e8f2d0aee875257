package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/fine"
	"github.com/campuscore/approval-service/internal/ledger"
	"github.com/campuscore/approval-service/internal/model"
	"github.com/campuscore/approval-service/internal/repository"
	"github.com/campuscore/approval-service/internal/workflow"
)

// Service fronts the workflow engine and the ledger for the transport
// layer. Transitions go through the engine; reads come straight from the
// stores with the fine estimate computed on the way out.
type Service struct {
	log    *zap.Logger
	engine *workflow.Engine
	ledger ledger.Ledger
	repo   repository.Requests
	calc   fine.Calculator
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(engine *workflow.Engine, ldg ledger.Ledger, repo repository.Requests, ratePerDay int, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:    log,
		engine: engine,
		ledger: ldg,
		repo:   repo,
		calc:   fine.Calculator{RatePerDay: ratePerDay},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Submit(ctx context.Context, sub model.SubmitRequest) (model.Request, error) {
	return s.engine.Submit(ctx, sub)
}

func (s *Service) Review(ctx context.Context, requestID string, rev model.ReviewRequest) (model.Request, error) {
	return s.engine.Review(ctx, requestID, rev)
}

func (s *Service) Withdraw(ctx context.Context, requestID, requesterID string) (model.Request, error) {
	return s.engine.Withdraw(ctx, requestID, requesterID)
}

func (s *Service) Return(ctx context.Context, requestID string) (model.Request, error) {
	return s.engine.Return(ctx, requestID)
}

func (s *Service) GetStatus(ctx context.Context, requestID string) (model.RequestView, error) {
	req, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return model.RequestView{}, err
	}

	now := s.now()
	view := model.RequestView{
		Request:   req,
		IsOverdue: s.calc.IsOverdue(req, now),
	}
	if view.IsOverdue {
		view.FineEstimate = s.calc.Compute(req, now)
	}

	rec, err := s.repo.GetFine(ctx, requestID)
	switch {
	case err == nil:
		view.Fine = &rec
	case errors.Is(err, errs.ErrNotFound):
	default:
		return model.RequestView{}, err
	}
	return view, nil
}

func (s *Service) ListPending(ctx context.Context, role model.Role, page, size int) (model.ListRequests, error) {
	return s.repo.ListPending(ctx, role, page, size)
}

func (s *Service) RegisterResource(ctx context.Context, req model.RegisterResourceRequest) (model.Resource, error) {
	return s.ledger.Register(ctx, model.Resource{
		ResourceID:    req.ResourceID,
		Kind:          req.Kind,
		Name:          req.Name,
		TotalCapacity: req.Capacity,
	})
}

func (s *Service) Restock(ctx context.Context, resourceID string, qty int) (model.Resource, error) {
	if err := s.ledger.Restock(ctx, resourceID, qty); err != nil {
		return model.Resource{}, err
	}
	return s.ledger.Get(ctx, resourceID)
}

func (s *Service) Availability(ctx context.Context, resourceID string) (model.Resource, error) {
	return s.ledger.Get(ctx, resourceID)
}
