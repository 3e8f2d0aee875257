package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
)

type tokenState uint8

const (
	tokenReserved tokenState = iota + 1
	tokenConsumed
	tokenReleased
)

type reservation struct {
	token string
	qty   int
	state tokenState
}

type entry struct {
	mu           sync.Mutex
	res          model.Resource
	reservations map[string]*reservation
}

// Memory is the in-process ledger. Counters and token transitions of one
// resource share the entry mutex, so capacity checks and increments are
// one atomic unit; entries of different resources do not contend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	tokens  map[string]string // token -> resourceId
}

var _ Ledger = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		tokens:  make(map[string]string),
	}
}

func (m *Memory) Register(_ context.Context, res model.Resource) (model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[res.ResourceID]; ok {
		return model.Resource{}, errs.ErrDuplicateResource
	}
	res.ReservedCount, res.ConsumedCount = 0, 0
	m.entries[res.ResourceID] = &entry{
		res:          res,
		reservations: make(map[string]*reservation),
	}
	return res, nil
}

func (m *Memory) entryFor(resourceID string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[resourceID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return e, nil
}

func (m *Memory) Get(_ context.Context, resourceID string) (model.Resource, error) {
	e, err := m.entryFor(resourceID)
	if err != nil {
		return model.Resource{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.res, nil
}

func (m *Memory) Availability(ctx context.Context, resourceID string) (int, error) {
	res, err := m.Get(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	return res.Available(), nil
}

func (m *Memory) Reserve(_ context.Context, resourceID string, qty int) (string, error) {
	if qty <= 0 {
		return "", errs.ErrInvalidTransition
	}
	e, err := m.entryFor(resourceID)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if e.res.Available() < qty {
		e.mu.Unlock()
		return "", errs.ErrInsufficientCapacity
	}
	token := uuid.NewString()
	e.res.ReservedCount += qty
	e.reservations[token] = &reservation{token: token, qty: qty, state: tokenReserved}
	e.mu.Unlock()

	m.mu.Lock()
	m.tokens[token] = resourceID
	m.mu.Unlock()
	return token, nil
}

func (m *Memory) reservationFor(token string) (*entry, *reservation, error) {
	m.mu.RLock()
	resourceID, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, errs.ErrInvalidToken
	}
	e, err := m.entryFor(resourceID)
	if err != nil {
		return nil, nil, errs.ErrInvalidToken
	}
	return e, e.reservations[token], nil
}

func (m *Memory) Consume(_ context.Context, token string) error {
	e, _, err := m.reservationFor(token)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.reservations[token]
	if r == nil || r.state != tokenReserved {
		return errs.ErrInvalidToken
	}
	r.state = tokenConsumed
	e.res.ReservedCount -= r.qty
	e.res.ConsumedCount += r.qty
	return nil
}

func (m *Memory) Release(_ context.Context, token string) error {
	e, _, err := m.reservationFor(token)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.reservations[token]
	if r == nil {
		return errs.ErrInvalidToken
	}
	if r.state != tokenReserved { // already consumed or released
		return nil
	}
	r.state = tokenReleased
	e.res.ReservedCount -= r.qty
	return nil
}

func (m *Memory) Restock(_ context.Context, resourceID string, qty int) error {
	if qty <= 0 {
		return errs.ErrInvalidTransition
	}
	e, err := m.entryFor(resourceID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.res.TotalCapacity += qty
	return nil
}

func (m *Memory) ReturnUnits(_ context.Context, resourceID string, qty int) error {
	if qty <= 0 {
		return errs.ErrInvalidTransition
	}
	e, err := m.entryFor(resourceID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.res.ConsumedCount < qty {
		return errs.ErrInvalidTransition
	}
	e.res.ConsumedCount -= qty
	return nil
}
