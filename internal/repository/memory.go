package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
)

// Memory backs the engine in tests and single-process setups.
type Memory struct {
	mu       sync.RWMutex
	requests map[string]model.Request
	fines    map[string]model.FineRecord
}

var _ Requests = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[string]model.Request),
		fines:    make(map[string]model.FineRecord),
	}
}

func clone(req model.Request) model.Request {
	out := req
	out.Steps = append([]model.Step(nil), req.Steps...)
	return out
}

func (m *Memory) Create(_ context.Context, req model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; ok {
		return errs.ErrInvalidTransition
	}
	m.requests[req.ID] = clone(req)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return model.Request{}, errs.ErrNotFound
	}
	return clone(req), nil
}

func (m *Memory) Update(_ context.Context, req model.Request, steps ...model.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok {
		return errs.ErrNotFound
	}
	next := clone(req)
	next.Steps = append(append([]model.Step(nil), stored.Steps...), steps...)
	m.requests[req.ID] = next
	return nil
}

func (m *Memory) ListPending(_ context.Context, role model.Role, page, size int) (model.ListRequests, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]model.Request, 0)
	for _, req := range m.requests {
		if req.Status == model.StatusPending && req.PendingRole != nil && *req.PendingRole == role {
			items = append(items, clone(req))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	if page != 0 && size != 0 {
		from := (page - 1) * size
		if from > len(items) {
			from = len(items)
		}
		to := from + size
		if to > len(items) {
			to = len(items)
		}
		items = items[from:to]
	}

	return model.ListRequests{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(items),
		},
		Items: items,
	}, nil
}

func (m *Memory) ChargeFine(_ context.Context, fine model.FineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fines[fine.RequestID]; ok { // frozen at first charge
		return nil
	}
	m.fines[fine.RequestID] = fine
	return nil
}

func (m *Memory) GetFine(_ context.Context, requestID string) (model.FineRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fine, ok := m.fines[requestID]
	if !ok {
		return model.FineRecord{}, errs.ErrNotFound
	}
	return fine, nil
}
