package linkage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sagaCols = `id, patient_id, proforma_id, adl_file_id, state, step, error, started_at, finished_at`

func (r *repoPG) Create(ctx context.Context, s *SagaLog) error {
	s.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO saga_log (id, patient_id, proforma_id, adl_file_id, state, step, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING started_at`,
		s.ID, s.PatientID, s.ProformaID, s.ADLFileID, s.State, s.Step, s.Error,
	).Scan(&s.StartedAt)
	if err != nil {
		return fmt.Errorf("insert saga log: %w", err)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, s *SagaLog) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE saga_log SET
			proforma_id=$2, adl_file_id=$3, state=$4, step=$5, error=$6, finished_at=$7
		WHERE id = $1`,
		s.ID, s.ProformaID, s.ADLFileID, s.State, s.Step, s.Error, s.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*SagaLog, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+sagaCols+` FROM saga_log WHERE id = $1`, id)
	s, err := scanSaga(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s, err
}

func (r *repoPG) List(ctx context.Context, state string, limit, offset int) ([]*SagaLog, int, error) {
	where := ``
	args := []interface{}{}
	if state != "" {
		where = ` WHERE state = $1`
		args = append(args, state)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM saga_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + sagaCols + ` FROM saga_log` + where +
		fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sagas []*SagaLog
	for rows.Next() {
		s, err := scanSaga(rows)
		if err != nil {
			return nil, 0, err
		}
		sagas = append(sagas, s)
	}
	return sagas, total, rows.Err()
}

func scanSaga(row pgx.Row) (*SagaLog, error) {
	var s SagaLog
	err := row.Scan(&s.ID, &s.PatientID, &s.ProformaID, &s.ADLFileID, &s.State, &s.Step, &s.Error, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
