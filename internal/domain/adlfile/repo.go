package adlfile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the file and assigns its display number from the
	// store's sequence.
	Create(ctx context.Context, f *ADLFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*ADLFile, error)
	Update(ctx context.Context, f *ADLFile) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ADLFile, int, error)
	CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error)

	AppendMovement(ctx context.Context, m *MovementRecord) error
	// MovementsByFile returns the custody ledger, most recent first.
	MovementsByFile(ctx context.Context, fileID uuid.UUID) ([]*MovementRecord, error)
}
