package linkage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinrec/clinrec/internal/domain/adlfile"
	"github.com/clinrec/clinrec/internal/domain/patient"
	"github.com/clinrec/clinrec/internal/domain/proforma"
)

// Result is what a successful submission returns: the encounter, and the
// linked file when the case was complex.
type Result struct {
	Proforma *proforma.Proforma `json:"proforma"`
	ADLFile  *adlfile.ADLFile   `json:"adl_file,omitempty"`
}

// Coordinator runs the encounter/file linkage saga. The store gives us no
// cross-table transaction, so the four steps are ordered writes with explicit
// compensation, and a persisted intent log so a failed rollback is findable.
type Coordinator struct {
	proformas  proforma.Repository
	patients   patient.Repository
	files      *adlfile.Service
	sagas      Repository
	projection *patient.ProjectionSync
	logger     zerolog.Logger

	locks patientLocks
}

func NewCoordinator(
	proformas proforma.Repository,
	patients patient.Repository,
	files *adlfile.Service,
	sagas Repository,
	projection *patient.ProjectionSync,
	logger zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		proformas:  proformas,
		patients:   patients,
		files:      files,
		sagas:      sagas,
		projection: projection,
		logger:     logger,
		locks:      patientLocks{entries: make(map[uuid.UUID]*lockEntry)},
	}
}

// LinkEncounter persists a new encounter and, for a complex case, links an
// ADL file to it. Steps, in order: (1) insert the encounter, (2) open or
// reuse the file, (3) back-link the encounter to the file, (4) best-effort
// projection sync. A step-2 failure deletes the encounter from step 1; a
// step-3 failure keeps the file, which may already be referenced by ledger
// entries.
func (c *Coordinator) LinkEncounter(ctx context.Context, p *proforma.Proforma) (*Result, error) {
	if err := proforma.Validate(p); err != nil {
		return nil, err
	}
	if _, err := c.patients.GetByID(ctx, p.PatientID); err != nil {
		return nil, err
	}

	if !p.IsComplex() {
		if err := c.proformas.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create encounter: %w", err)
		}
		return &Result{Proforma: p}, nil
	}

	unlock := c.locks.lock(p.PatientID)
	defer unlock()

	saga := &SagaLog{PatientID: p.PatientID, State: SagaStarted}
	if err := c.sagas.Create(ctx, saga); err != nil {
		return nil, fmt.Errorf("record saga intent: %w", err)
	}

	// Step 1: the encounter row.
	if err := c.proformas.Create(ctx, p); err != nil {
		c.finish(ctx, saga, SagaFailed, 1, err)
		return nil, fmt.Errorf("%w: create encounter: %v", ErrSagaFailed, err)
	}
	saga.ProformaID = &p.ID

	file, err := c.linkFile(ctx, saga, p)
	if err != nil {
		return nil, err
	}
	return &Result{Proforma: p, ADLFile: file}, nil
}

// LinkExisting attaches a file to an encounter that is already persisted,
// typically after an edit flipped its decision to complex. There is no step-1
// row to compensate: a failure leaves the encounter as it was.
func (c *Coordinator) LinkExisting(ctx context.Context, p *proforma.Proforma) error {
	unlock := c.locks.lock(p.PatientID)
	defer unlock()

	saga := &SagaLog{PatientID: p.PatientID, ProformaID: &p.ID, State: SagaStarted, Step: 1}
	if err := c.sagas.Create(ctx, saga); err != nil {
		return fmt.Errorf("record saga intent: %w", err)
	}

	file, err := c.fileFor(ctx, p)
	if err != nil {
		c.finish(ctx, saga, SagaFailed, 2, err)
		return fmt.Errorf("%w: open file: %v", ErrSagaFailed, err)
	}
	saga.ADLFileID = &file.ID

	if err := c.proformas.UpdateFileRef(ctx, p.ID, &file.ID); err != nil {
		c.finish(ctx, saga, SagaFailed, 3, err)
		return fmt.Errorf("%w: back-link encounter: %v", ErrSagaFailed, err)
	}
	p.ADLFileID = &file.ID

	c.projection.SyncQuiet(ctx, p.PatientID)
	c.finish(ctx, saga, SagaCompleted, 4, nil)
	return nil
}

// ListSagas exposes the intent log, optionally filtered by state, so stuck
// runs can be found and reconciled.
func (c *Coordinator) ListSagas(ctx context.Context, state string, limit, offset int) ([]*SagaLog, int, error) {
	return c.sagas.List(ctx, state, limit, offset)
}

// linkFile runs steps 2-4 for a saga whose step 1 created the encounter and
// therefore owes compensation on a step-2 failure.
func (c *Coordinator) linkFile(ctx context.Context, saga *SagaLog, p *proforma.Proforma) (*adlfile.ADLFile, error) {
	// Step 2: open (or reuse) the file.
	file, err := c.fileFor(ctx, p)
	if err != nil {
		return nil, c.compensate(ctx, saga, p, err)
	}
	saga.ADLFileID = &file.ID

	// Step 3: back-link. The file is kept on failure; ledger entries may
	// already reference it.
	if err := c.proformas.UpdateFileRef(ctx, p.ID, &file.ID); err != nil {
		c.finish(ctx, saga, SagaFailed, 3, err)
		return nil, fmt.Errorf("%w: back-link encounter: %v", ErrSagaFailed, err)
	}
	p.ADLFileID = &file.ID

	// Step 4: projection, best effort only.
	c.projection.SyncQuiet(ctx, p.PatientID)
	c.finish(ctx, saga, SagaCompleted, 4, nil)
	return file, nil
}

// fileFor reuses the encounter's existing file when it has one; one file per
// encounter, never a second.
func (c *Coordinator) fileFor(ctx context.Context, p *proforma.Proforma) (*adlfile.ADLFile, error) {
	if p.ADLFileID != nil {
		return c.files.GetFile(ctx, *p.ADLFileID)
	}
	return c.files.OpenFile(ctx, p.PatientID, &p.ID, p.AuthorID)
}

// compensate deletes the step-1 encounter after a step-2 failure. Runs on a
// detached context: a client disconnect must not abandon a rollback mid-step.
func (c *Coordinator) compensate(ctx context.Context, saga *SagaLog, p *proforma.Proforma, cause error) error {
	ctx = context.WithoutCancel(ctx)

	if err := c.proformas.Delete(ctx, p.ID); err != nil {
		c.logger.Error().
			Err(err).
			Str("saga_id", saga.ID.String()).
			Str("proforma_id", p.ID.String()).
			Msg("saga compensation failed, store is inconsistent")
		c.finish(ctx, saga, SagaCompensationFailed, 2, err)
		return fmt.Errorf("%w: %v (after: %v)", ErrCompensationFailed, err, cause)
	}

	c.finish(ctx, saga, SagaCompensated, 2, cause)
	return fmt.Errorf("%w: open file: %v", ErrSagaFailed, cause)
}

func (c *Coordinator) finish(ctx context.Context, saga *SagaLog, state string, step int, cause error) {
	now := time.Now()
	saga.State = state
	saga.Step = step
	saga.FinishedAt = &now
	if cause != nil {
		msg := cause.Error()
		saga.Error = &msg
	}
	if err := c.sagas.Update(context.WithoutCancel(ctx), saga); err != nil {
		c.logger.Error().Err(err).Str("saga_id", saga.ID.String()).Msg("saga log update failed")
	}
}

// patientLocks serializes sagas per patient. Two submissions for the same
// patient take turns; different patients proceed independently. Entries are
// refcounted so the map does not grow with patient cardinality.
type patientLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (l *patientLocks) lock(patientID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[patientID]
	if !ok {
		e = &lockEntry{}
		l.entries[patientID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, patientID)
		}
		l.mu.Unlock()
	}
}
