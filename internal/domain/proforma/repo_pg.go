package proforma

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

const proformaCols = `id, patient_id, author_id, visit_date, decision, severity, adl_file_id,
	chief_complaint, clinical_notes, diagnosis, treatment_plan, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Proforma) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO proformas (id, patient_id, author_id, visit_date, decision, severity, adl_file_id,
			chief_complaint, clinical_notes, diagnosis, treatment_plan)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.PatientID, p.AuthorID, p.VisitDate, p.Decision, p.Severity, p.ADLFileID,
		p.ChiefComplaint, p.ClinicalNotes, p.Diagnosis, p.TreatmentPlan,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Proforma, error) {
	return scanProforma(r.conn(ctx).QueryRow(ctx, `SELECT `+proformaCols+` FROM proformas WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Proforma) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE proformas SET
			visit_date=$2, decision=$3, severity=$4, chief_complaint=$5, clinical_notes=$6,
			diagnosis=$7, treatment_plan=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.VisitDate, p.Decision, p.Severity, p.ChiefComplaint, p.ClinicalNotes,
		p.Diagnosis, p.TreatmentPlan,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateFileRef(ctx context.Context, id uuid.UUID, fileID *uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE proformas SET adl_file_id=$2, updated_at=NOW() WHERE id = $1`, id, fileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM proformas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Proforma, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM proformas WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+proformaCols+` FROM proformas WHERE patient_id = $1 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collectProformas(rows, total)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Proforma, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM proformas`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+proformaCols+` FROM proformas ORDER BY visit_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collectProformas(rows, total)
}

func collectProformas(rows pgx.Rows, total int) ([]*Proforma, int, error) {
	defer rows.Close()

	var items []*Proforma
	for rows.Next() {
		var p Proforma
		if err := rows.Scan(
			&p.ID, &p.PatientID, &p.AuthorID, &p.VisitDate, &p.Decision, &p.Severity, &p.ADLFileID,
			&p.ChiefComplaint, &p.ClinicalNotes, &p.Diagnosis, &p.TreatmentPlan, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}

func scanProforma(row pgx.Row) (*Proforma, error) {
	var p Proforma
	err := row.Scan(
		&p.ID, &p.PatientID, &p.AuthorID, &p.VisitDate, &p.Decision, &p.Severity, &p.ADLFileID,
		&p.ChiefComplaint, &p.ClinicalNotes, &p.Diagnosis, &p.TreatmentPlan, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan proforma: %w", err)
	}
	return &p, nil
}
