package fine

import (
	"time"

	"github.com/campuscore/approval-service/internal/model"
)

// Calculator derives overdue state and fine amounts from a request and a
// clock. It never mutates workflow state; charging (freezing the amount
// into a FineRecord) is the caller's explicit action.
type Calculator struct {
	RatePerDay int
}

// IsOverdue is false at dueDate exactly and flips once now passes it.
// A returned request is no longer overdue.
func (c Calculator) IsOverdue(req model.Request, now time.Time) bool {
	return req.DueDate != nil && now.After(*req.DueDate) && req.ReturnedAt == nil
}

// DaysLate counts elapsed days past due inclusively: any started day
// counts as a whole one.
func (c Calculator) DaysLate(req model.Request, now time.Time) int {
	if req.DueDate == nil || !now.After(*req.DueDate) {
		return 0
	}
	elapsed := now.Sub(*req.DueDate)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (c Calculator) Compute(req model.Request, now time.Time) int {
	return c.DaysLate(req, now) * c.RatePerDay
}

// Charge snapshots the current amount into a record.
func (c Calculator) Charge(req model.Request, now time.Time) model.FineRecord {
	return model.FineRecord{
		RequestID: req.ID,
		Amount:    c.Compute(req, now),
		DaysLate:  c.DaysLate(req, now),
		ChargedAt: now,
	}
}
