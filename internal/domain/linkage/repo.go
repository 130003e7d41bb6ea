package linkage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *SagaLog) error
	Update(ctx context.Context, s *SagaLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*SagaLog, error)
	List(ctx context.Context, state string, limit, offset int) ([]*SagaLog, int, error)
}
