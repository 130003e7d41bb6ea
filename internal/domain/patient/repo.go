package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// Projection columns. UpdateProjection touches only the derived fields so
	// the sync service cannot clobber concurrent demographic edits.
	UpdateProjection(ctx context.Context, id uuid.UUID, hasFile bool, complexity string) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
