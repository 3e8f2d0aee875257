package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
)

// Requests is the store the workflow engine drives. Update rewrites the
// request row and appends the given history entries in one transaction,
// so a concurrent reader sees either the whole transition or none of it.
type Requests interface {
	Create(ctx context.Context, req model.Request) error
	Get(ctx context.Context, id string) (model.Request, error)
	Update(ctx context.Context, req model.Request, steps ...model.Step) error
	ListPending(ctx context.Context, role model.Role, page, size int) (model.ListRequests, error)
	ChargeFine(ctx context.Context, fine model.FineRecord) error
	GetFine(ctx context.Context, requestID string) (model.FineRecord, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

var _ Requests = (*repository)(nil)

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	requestsTableName = `requests`
	stepsTableName    = `request_steps`
	finesTableName    = `fines`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var requestColumns = []string{
	"request_id", "requester_id", "requester_role", "kind", "resource_ref",
	"quantity", "status", "step_index", "pending_role", "token",
	"created_at", "resolved_at", "due_date", "returned_at",
}

func (r *repository) Create(ctx context.Context, req model.Request) error {
	q, args, err := qb.Insert(requestsTableName).
		Columns(requestColumns...).
		Values(req.ID, req.RequesterID, req.RequesterRole, req.Kind, req.ResourceRef,
			req.Quantity, req.Status, req.StepIndex, req.PendingRole, req.Token,
			req.CreatedAt, req.ResolvedAt, req.DueDate, req.ReturnedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("Create", zap.String("q", q), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (model.Request, error) {
	q, args, err := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"request_id": id}).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	var req model.Request
	if err := r.db.GetContext(ctx, &req, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, errs.ErrNotFound
		}
		return model.Request{}, err
	}

	steps, err := r.steps(ctx, id)
	if err != nil {
		return model.Request{}, err
	}
	req.Steps = steps
	return req, nil
}

func (r *repository) steps(ctx context.Context, id string) ([]model.Step, error) {
	q, args, err := qb.Select("request_id", "seq", "approver_id", "approver_role", "decision", "comment", "created_at").
		From(stepsTableName).
		Where(sq.Eq{"request_id": id}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}
	var steps []model.Step
	if err := r.db.SelectContext(ctx, &steps, q, args...); err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *repository) Update(ctx context.Context, req model.Request, steps ...model.Step) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	q, args, err := qb.Update(requestsTableName).
		Set("status", req.Status).
		Set("step_index", req.StepIndex).
		Set("pending_role", req.PendingRole).
		Set("resolved_at", req.ResolvedAt).
		Set("due_date", req.DueDate).
		Set("returned_at", req.ReturnedAt).
		Where(sq.Eq{"request_id": req.ID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return errs.ErrNotFound
	}

	for _, step := range steps {
		q, args, err := qb.Insert(stepsTableName).
			Columns("request_id", "seq", "approver_id", "approver_role", "decision", "comment", "created_at").
			Values(req.ID, step.Seq, step.ApproverID, step.ApproverRole, step.Decision, step.Comment, step.CreatedAt).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repository) ListPending(ctx context.Context, role model.Role, page, size int) (model.ListRequests, error) {
	q := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"status": model.StatusPending}).
		Where(sq.Eq{"pending_role": role}).
		OrderBy("created_at")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListRequests{}, err
	}
	var items []model.Request
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return model.ListRequests{}, err
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

func (r *repository) ChargeFine(ctx context.Context, fine model.FineRecord) error {
	// charged once, never recomputed
	q, args, err := qb.Insert(finesTableName).
		Columns("request_id", "amount", "days_late", "charged_at").
		Values(fine.RequestID, fine.Amount, fine.DaysLate, fine.ChargedAt).
		Suffix("on conflict (request_id) do nothing").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("ChargeFine", zap.String("q", q), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) GetFine(ctx context.Context, requestID string) (model.FineRecord, error) {
	q, args, err := qb.Select("request_id", "amount", "days_late", "charged_at").
		From(finesTableName).
		Where(sq.Eq{"request_id": requestID}).
		ToSql()
	if err != nil {
		return model.FineRecord{}, err
	}
	var fine model.FineRecord
	if err := r.db.GetContext(ctx, &fine, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FineRecord{}, errs.ErrNotFound
		}
		return model.FineRecord{}, err
	}
	return fine, nil
}
