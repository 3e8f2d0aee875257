package model

import (
	"time"
)

type Kind string

const (
	KindBook  Kind = "BOOK"
	KindItem  Kind = "ITEM"
	KindLeave Kind = "LEAVE"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusIssued    Status = "ISSUED"
	StatusFulfilled Status = "FULFILLED"
	StatusFinalized Status = "FINALIZED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

// Terminal reports whether no further review transitions are accepted.
func (s Status) Terminal() bool {
	return s != StatusPending
}

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

type Role string

const (
	RoleStudent         Role = "STUDENT"
	RoleTeacher         Role = "TEACHER"
	RoleTrainingOfficer Role = "TRAINING_OFFICER"
	RoleLibrarian       Role = "LIBRARIAN"
	RoleStoreManager    Role = "STORE_MANAGER"
)

type Request struct {
	ID            string     `json:"requestId" db:"request_id"`
	RequesterID   string     `json:"requesterId" db:"requester_id"`
	RequesterRole Role       `json:"requesterRole" db:"requester_role"`
	Kind          Kind       `json:"kind" db:"kind"`
	ResourceRef   *string    `json:"resourceRef,omitempty" db:"resource_ref"`
	Quantity      int        `json:"quantity" db:"quantity"`
	Status        Status     `json:"status" db:"status"`
	StepIndex     int        `json:"stepIndex" db:"step_index"`
	PendingRole   *Role      `json:"pendingRole,omitempty" db:"pending_role"`
	Token         *string    `json:"-" db:"token"`
	Steps         []Step     `json:"stepHistory" db:"-"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty" db:"resolved_at"`
	DueDate       *time.Time `json:"dueDate,omitempty" db:"due_date"`
	ReturnedAt    *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
}

// Step is one entry of the append-only approval history.
type Step struct {
	RequestID    string    `json:"-" db:"request_id"`
	Seq          int       `json:"seq" db:"seq"`
	ApproverID   string    `json:"approverId" db:"approver_id"`
	ApproverRole Role      `json:"approverRole" db:"approver_role"`
	Decision     Decision  `json:"decision" db:"decision"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"timestamp" db:"created_at"`
}

type Resource struct {
	ResourceID    string `json:"resourceId" db:"resource_id"`
	Kind          Kind   `json:"kind" db:"kind"`
	Name          string `json:"name" db:"name"`
	TotalCapacity int    `json:"totalCapacity" db:"total_capacity"`
	ReservedCount int    `json:"reservedCount" db:"reserved_count"`
	ConsumedCount int    `json:"consumedCount" db:"consumed_count"`
}

// Available is what is left to hand out.
func (r Resource) Available() int {
	return r.TotalCapacity - r.ReservedCount - r.ConsumedCount
}

// FineRecord freezes a fine amount at charge time. Until charged, fines
// exist only as a computed estimate on the read path.
type FineRecord struct {
	RequestID string    `json:"requestId" db:"request_id"`
	Amount    int       `json:"amount" db:"amount"`
	DaysLate  int       `json:"daysLate" db:"days_late"`
	ChargedAt time.Time `json:"chargedAt" db:"charged_at"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListRequests struct {
	Paging `json:",inline"`
	Items  []Request `json:"items"`
}

type SubmitRequest struct {
	RequesterID   string  `json:"-" validate:"required"`
	RequesterRole Role    `json:"-" validate:"required"`
	Kind          Kind    `json:"kind" validate:"required,oneof=BOOK ITEM LEAVE"`
	ResourceRef   *string `json:"resourceRef,omitempty"`
	Quantity      int     `json:"quantity" validate:"omitempty,gt=0"`
}

type ReviewRequest struct {
	ActorID   string   `json:"-" validate:"required"`
	ActorRole Role     `json:"-" validate:"required"`
	Decision  Decision `json:"decision" validate:"required"`
	Comment   string   `json:"comment"`
}

type RegisterResourceRequest struct {
	ResourceID string `json:"resourceId" validate:"required"`
	Kind       Kind   `json:"kind" validate:"required,oneof=BOOK ITEM"`
	Name       string `json:"name" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,gt=0"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// RequestView is the read projection returned by the status endpoint:
// the request itself plus state derived from the clock.
type RequestView struct {
	Request      `json:",inline"`
	IsOverdue    bool        `json:"isOverdue"`
	FineEstimate int         `json:"fineEstimate"`
	Fine         *FineRecord `json:"fine,omitempty"`
}
