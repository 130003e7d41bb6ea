package proforma

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Proforma) error
	GetByID(ctx context.Context, id uuid.UUID) (*Proforma, error)
	Update(ctx context.Context, p *Proforma) error
	// UpdateFileRef sets or clears the encounter's ADL file pointer.
	UpdateFileRef(ctx context.Context, id uuid.UUID, fileID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Proforma, int, error)
	List(ctx context.Context, limit, offset int) ([]*Proforma, int, error)
}
