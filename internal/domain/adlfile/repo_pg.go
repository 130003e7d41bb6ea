package adlfile

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

const fileCols = `id, patient_id, proforma_id, adl_no, status, current_location, created_by,
	last_accessed_by, last_accessed_date, total_visits, is_active, notes, created_at, updated_at`

// Create assigns adl_no from the adl_no_seq sequence inside the insert, so
// concurrent creations can never collide on a display number. The pad width
// grows past six digits rather than truncating (lpad truncates), matching
// FormatNumber.
func (r *repoPG) Create(ctx context.Context, f *ADLFile) error {
	f.ID = uuid.New()
	if f.Status == "" {
		f.Status = StatusCreated
	}
	if f.CurrentLocation == "" {
		f.CurrentLocation = LocationDoctorOffice
	}
	f.IsActive = true
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO adl_files (id, patient_id, proforma_id, adl_no, status, current_location, created_by, is_active, notes)
		SELECT $1, $2, $3, 'ADL-' || lpad(n::text, greatest(length(n::text), 6), '0'), $4, $5, $6, TRUE, $7
		FROM (SELECT nextval('adl_no_seq') AS n) seq
		RETURNING adl_no, created_at, updated_at`,
		f.ID, f.PatientID, f.ProformaID, f.Status, f.CurrentLocation, f.CreatedBy, f.Notes,
	).Scan(&f.ADLNo, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert adl file: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ADLFile, error) {
	return scanFile(r.conn(ctx).QueryRow(ctx, `SELECT `+fileCols+` FROM adl_files WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, f *ADLFile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE adl_files SET
			proforma_id=$2, status=$3, current_location=$4, last_accessed_by=$5, last_accessed_date=$6,
			total_visits=$7, is_active=$8, notes=$9, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.ProformaID, f.Status, f.CurrentLocation, f.LastAccessedBy, f.LastAccessedDate,
		f.TotalVisits, f.IsActive, f.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ADLFile, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM adl_files WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+fileCols+` FROM adl_files WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var files []*ADLFile
	for rows.Next() {
		var f ADLFile
		if err := rows.Scan(
			&f.ID, &f.PatientID, &f.ProformaID, &f.ADLNo, &f.Status, &f.CurrentLocation, &f.CreatedBy,
			&f.LastAccessedBy, &f.LastAccessedDate, &f.TotalVisits, &f.IsActive, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		files = append(files, &f)
	}
	return files, total, rows.Err()
}

func (r *repoPG) CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM adl_files WHERE patient_id = $1 AND is_active`, patientID).Scan(&n)
	return n, err
}

func (r *repoPG) AppendMovement(ctx context.Context, m *MovementRecord) error {
	m.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO file_movements (id, adl_file_id, patient_id, moved_by, movement_type, from_location, to_location, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING moved_at`,
		m.ID, m.ADLFileID, m.PatientID, m.MovedBy, m.MovementType, m.FromLocation, m.ToLocation, m.Notes,
	).Scan(&m.MovedAt)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (r *repoPG) MovementsByFile(ctx context.Context, fileID uuid.UUID) ([]*MovementRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, adl_file_id, patient_id, moved_by, movement_type, from_location, to_location, moved_at, notes
		FROM file_movements WHERE adl_file_id = $1 ORDER BY seq DESC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*MovementRecord
	for rows.Next() {
		var m MovementRecord
		if err := rows.Scan(
			&m.ID, &m.ADLFileID, &m.PatientID, &m.MovedBy, &m.MovementType,
			&m.FromLocation, &m.ToLocation, &m.MovedAt, &m.Notes,
		); err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

func scanFile(row pgx.Row) (*ADLFile, error) {
	var f ADLFile
	err := row.Scan(
		&f.ID, &f.PatientID, &f.ProformaID, &f.ADLNo, &f.Status, &f.CurrentLocation, &f.CreatedBy,
		&f.LastAccessedBy, &f.LastAccessedDate, &f.TotalVisits, &f.IsActive, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan adl file: %w", err)
	}
	return &f, nil
}
