package proforma

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Linker attaches an ADL file to an already-persisted complex-case encounter.
// The linkage coordinator satisfies this; the indirection keeps this package
// from importing the saga machinery.
type Linker interface {
	LinkExisting(ctx context.Context, p *Proforma) error
}

type Service struct {
	repo   Repository
	linker Linker
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetLinker wires the coordinator in after construction. Both services need
// each other at startup; this breaks the constructor cycle.
func (s *Service) SetLinker(l Linker) {
	s.linker = l
}

// Validate checks the fields required before an encounter may be persisted.
func Validate(p *Proforma) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if p.VisitDate.IsZero() {
		return fmt.Errorf("%w: visit_date is required", ErrValidation)
	}
	switch p.Decision {
	case DecisionSimpleCase, DecisionComplexCase:
	case "":
		p.Decision = DecisionSimpleCase
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDecision, p.Decision)
	}
	return nil
}

func (s *Service) GetProforma(ctx context.Context, id uuid.UUID) (*Proforma, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListProformas(ctx context.Context, limit, offset int) ([]*Proforma, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Proforma, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateProforma persists clinical edits. When the edit flips the decision
// from simple_case to complex_case the encounter gains an ADL file through
// the linker, exactly as a fresh complex submission would.
func (s *Service) UpdateProforma(ctx context.Context, p *Proforma) (*Proforma, error) {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.VisitDate.IsZero() {
		p.VisitDate = existing.VisitDate
	}
	if p.Decision == "" {
		p.Decision = existing.Decision
	}
	p.PatientID = existing.PatientID
	p.AuthorID = existing.AuthorID
	p.ADLFileID = existing.ADLFileID
	if err := Validate(p); err != nil {
		return nil, err
	}

	flipped := existing.Decision != DecisionComplexCase &&
		p.Decision == DecisionComplexCase && p.ADLFileID == nil

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if flipped {
		if s.linker == nil {
			return nil, fmt.Errorf("no linker configured for complex case %s", p.ID)
		}
		if err := s.linker.LinkExisting(ctx, p); err != nil {
			return nil, fmt.Errorf("link adl file: %w", err)
		}
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *Service) DeleteProforma(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
