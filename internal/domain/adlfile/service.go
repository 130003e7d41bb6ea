package adlfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service drives the file custody state machine. Every transition performs a
// status update followed by a ledger append; the ledger must reflect each
// transition exactly once, in order.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// OpenFile inserts a new file for a patient and writes the opening ledger
// entry. The file starts in the created state at the doctor's office, where
// the encounter that required it took place.
func (s *Service) OpenFile(ctx context.Context, patientID uuid.UUID, proformaID *uuid.UUID, actor uuid.UUID) (*ADLFile, error) {
	f := &ADLFile{
		PatientID:       patientID,
		ProformaID:      proformaID,
		Status:          StatusCreated,
		CurrentLocation: LocationDoctorOffice,
		CreatedBy:       actor,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	// The ledger must carry the opening entry before the file is reported as
	// created; a failed append fails the whole operation so the caller can
	// unwind.
	if err := s.repo.AppendMovement(ctx, &MovementRecord{
		ADLFileID:    f.ID,
		PatientID:    f.PatientID,
		MovedBy:      actor,
		MovementType: MovementCreated,
		FromLocation: "",
		ToLocation:   LocationDoctorOffice,
	}); err != nil {
		return nil, fmt.Errorf("opening ledger entry: %w", err)
	}
	return f, nil
}

func (s *Service) GetFile(ctx context.Context, id uuid.UUID) (*ADLFile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ADLFile, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// StoreFile files a freshly created dossier into the record room.
func (s *Service) StoreFile(ctx context.Context, id, actor uuid.UUID) (*ADLFile, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != StatusCreated {
		return nil, fmt.Errorf("%w: cannot store file in status %q", ErrInvalidTransition, f.Status)
	}

	f.Status = StatusStored
	f.CurrentLocation = LocationRecordRoom
	return s.transition(ctx, f, actor, MovementStored, LocationDoctorOffice, LocationRecordRoom, nil)
}

// RetrieveFile checks a stored file out to the doctor's office. A file that
// was never stored cannot be retrieved.
func (s *Service) RetrieveFile(ctx context.Context, id, actor uuid.UUID) (*ADLFile, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != StatusStored {
		return nil, fmt.Errorf("%w: cannot retrieve file in status %q", ErrInvalidTransition, f.Status)
	}

	now := time.Now()
	f.Status = StatusRetrieved
	f.CurrentLocation = LocationDoctorOffice
	f.LastAccessedBy = &actor
	f.LastAccessedDate = &now
	f.TotalVisits++
	return s.transition(ctx, f, actor, MovementRetrieved, LocationRecordRoom, LocationDoctorOffice, nil)
}

// ReturnFile checks a retrieved file back into the record room.
func (s *Service) ReturnFile(ctx context.Context, id, actor uuid.UUID) (*ADLFile, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != StatusRetrieved {
		return nil, fmt.Errorf("%w: cannot return file in status %q", ErrInvalidTransition, f.Status)
	}

	now := time.Now()
	f.Status = StatusStored
	f.CurrentLocation = LocationRecordRoom
	f.LastAccessedBy = &actor
	f.LastAccessedDate = &now
	return s.transition(ctx, f, actor, MovementReturned, LocationDoctorOffice, LocationRecordRoom, nil)
}

// ArchiveFile moves a file to the archive room and deactivates it. Allowed
// from any non-terminal state; archiving twice is rejected.
func (s *Service) ArchiveFile(ctx context.Context, id, actor uuid.UUID, note *string) (*ADLFile, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == StatusArchived {
		return nil, ErrAlreadyArchived
	}

	from := f.CurrentLocation
	f.Status = StatusArchived
	f.CurrentLocation = LocationArchiveRoom
	f.IsActive = false
	if note != nil {
		appended := *note
		if f.Notes != nil && *f.Notes != "" {
			appended = *f.Notes + "\n" + *note
		}
		f.Notes = &appended
	}
	return s.transition(ctx, f, actor, MovementArchived, from, LocationArchiveRoom, note)
}

// DeleteFile is archival under another name: the ledger is never truncated
// and no row is removed. The deletion reason is preserved in the notes.
func (s *Service) DeleteFile(ctx context.Context, id, actor uuid.UUID, reason string) (*ADLFile, error) {
	annotation := "deleted: " + reason
	if reason == "" {
		annotation = "deleted"
	}
	return s.ArchiveFile(ctx, id, actor, &annotation)
}

// MovementHistory returns the file's custody ledger, most recent first.
func (s *Service) MovementHistory(ctx context.Context, fileID uuid.UUID) ([]*MovementRecord, error) {
	if _, err := s.repo.GetByID(ctx, fileID); err != nil {
		return nil, err
	}
	return s.repo.MovementsByFile(ctx, fileID)
}

func (s *Service) transition(ctx context.Context, f *ADLFile, actor uuid.UUID, movement, from, to string, notes *string) (*ADLFile, error) {
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	if err := s.repo.AppendMovement(ctx, &MovementRecord{
		ADLFileID:    f.ID,
		PatientID:    f.PatientID,
		MovedBy:      actor,
		MovementType: movement,
		FromLocation: from,
		ToLocation:   to,
		Notes:        notes,
	}); err != nil {
		return nil, fmt.Errorf("status updated but ledger append failed: %w", err)
	}
	return f, nil
}
