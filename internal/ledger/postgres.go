package ledger

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
)

const (
	resourcesTableName    = `resources`
	reservationsTableName = `reservations`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres keeps the counters in the resources table. Capacity checks
// and increments run as single conditional updates, so serialization
// per resource comes from row-level locking.
type Postgres struct {
	db  *sqlx.DB
	log *zap.Logger
}

var _ Ledger = (*Postgres)(nil)

func NewPostgres(db *sqlx.DB, log *zap.Logger) *Postgres {
	return &Postgres{
		db:  db,
		log: log.Named("ledger"),
	}
}

func (p *Postgres) Register(ctx context.Context, res model.Resource) (model.Resource, error) {
	q, args, err := qb.Insert(resourcesTableName).
		Columns("resource_id", "kind", "name", "total_capacity", "reserved_count", "consumed_count").
		Values(res.ResourceID, res.Kind, res.Name, res.TotalCapacity, 0, 0).
		Suffix("returning resource_id, kind, name, total_capacity, reserved_count, consumed_count").
		ToSql()
	if err != nil {
		return model.Resource{}, err
	}
	var out model.Resource
	if err := p.db.GetContext(ctx, &out, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Resource{}, errs.ErrDuplicateResource
		}
		return model.Resource{}, err
	}
	return out, nil
}

func (p *Postgres) Get(ctx context.Context, resourceID string) (model.Resource, error) {
	q, args, err := qb.Select("resource_id", "kind", "name", "total_capacity", "reserved_count", "consumed_count").
		From(resourcesTableName).
		Where(sq.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return model.Resource{}, err
	}
	var res model.Resource
	if err := p.db.GetContext(ctx, &res, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Resource{}, errs.ErrNotFound
		}
		return model.Resource{}, err
	}
	return res, nil
}

func (p *Postgres) Availability(ctx context.Context, resourceID string) (int, error) {
	res, err := p.Get(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	return res.Available(), nil
}

func (p *Postgres) Reserve(ctx context.Context, resourceID string, qty int) (string, error) {
	if qty <= 0 {
		return "", errs.ErrInvalidTransition
	}
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() //nolint:errcheck

	q := `
update resources
	set reserved_count = reserved_count + $2
where resource_id = $1
	and total_capacity - reserved_count - consumed_count >= $2
returning resource_id`
	var id string
	if err := tx.QueryRowContext(ctx, q, resourceID, qty).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := p.Get(ctx, resourceID); getErr != nil {
				return "", getErr
			}
			return "", errs.ErrInsufficientCapacity
		}
		return "", err
	}

	token := uuid.NewString()
	ins, args, err := qb.Insert(reservationsTableName).
		Columns("token", "resource_id", "qty", "state").
		Values(token, resourceID, qty, "RESERVED").
		ToSql()
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, ins, args...); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return token, nil
}

func (p *Postgres) Consume(ctx context.Context, token string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	q := `
update reservations
	set state = 'CONSUMED'
where token = $1 and state = 'RESERVED'
returning resource_id, qty`
	var (
		resourceID string
		qty        int
	)
	if err := tx.QueryRowContext(ctx, q, token).Scan(&resourceID, &qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrInvalidToken
		}
		return err
	}

	q = `
update resources
	set reserved_count = reserved_count - $2,
	    consumed_count = consumed_count + $2
where resource_id = $1`
	if _, err := tx.ExecContext(ctx, q, resourceID, qty); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) Release(ctx context.Context, token string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var state string
	if err := tx.QueryRowContext(ctx,
		`select state from reservations where token = $1 for update`, token).Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrInvalidToken
		}
		return err
	}
	if state != "RESERVED" { // already consumed or released
		return tx.Commit()
	}

	q := `
update resources r
	set reserved_count = r.reserved_count - rv.qty
from reservations rv
where rv.token = $1 and r.resource_id = rv.resource_id`
	if _, err := tx.ExecContext(ctx, q, token); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`update reservations set state = 'RELEASED' where token = $1`, token); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) Restock(ctx context.Context, resourceID string, qty int) error {
	if qty <= 0 {
		return errs.ErrInvalidTransition
	}
	res, err := p.db.ExecContext(ctx,
		`update resources set total_capacity = total_capacity + $2 where resource_id = $1`,
		resourceID, qty)
	if err != nil {
		return err
	}
	return p.checkAffected(res)
}

func (p *Postgres) ReturnUnits(ctx context.Context, resourceID string, qty int) error {
	if qty <= 0 {
		return errs.ErrInvalidTransition
	}
	res, err := p.db.ExecContext(ctx,
		`update resources set consumed_count = consumed_count - $2
		 where resource_id = $1 and consumed_count >= $2`,
		resourceID, qty)
	if err != nil {
		return err
	}
	if err := p.checkAffected(res); err != nil {
		if _, getErr := p.Get(ctx, resourceID); getErr != nil {
			return getErr
		}
		return errs.ErrInvalidTransition
	}
	return nil
}

func (p *Postgres) checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
