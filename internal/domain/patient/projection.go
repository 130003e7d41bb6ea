package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileCounter reports how many non-archived ADL files a patient has. The
// adlfile repository satisfies this; the indirection keeps this package free
// of a dependency on the file domain.
type FileCounter interface {
	CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

// ProjectionSync maintains the derived has_adl_file / case_complexity columns
// on the patient row. The columns are a cache, not a source of truth: callers
// treat Sync failures as log-worthy, never fatal.
type ProjectionSync struct {
	repo   Repository
	files  FileCounter
	logger zerolog.Logger
}

func NewProjectionSync(repo Repository, files FileCounter, logger zerolog.Logger) *ProjectionSync {
	return &ProjectionSync{repo: repo, files: files, logger: logger}
}

// Sync recomputes both projection columns from the patient's ADL files. It
// writes in both directions: a patient whose last file was archived drops
// back to simple/false.
func (s *ProjectionSync) Sync(ctx context.Context, patientID uuid.UUID) error {
	active, err := s.files.CountActiveByPatient(ctx, patientID)
	if err != nil {
		return fmt.Errorf("count active files: %w", err)
	}

	hasFile := active > 0
	complexity := ComplexitySimple
	if hasFile {
		complexity = ComplexityComplex
	}

	if err := s.repo.UpdateProjection(ctx, patientID, hasFile, complexity); err != nil {
		return fmt.Errorf("update projection: %w", err)
	}
	return nil
}

// SyncQuiet runs Sync and downgrades any failure to a log line. This is the
// call sites' contract: projection staleness must never fail a request.
func (s *ProjectionSync) SyncQuiet(ctx context.Context, patientID uuid.UUID) {
	if err := s.Sync(ctx, patientID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("patient_id", patientID.String()).
			Msg("projection sync failed, will be repaired by sweep")
	}
}

// Sweeper periodically re-syncs every patient so the staleness window of the
// projection columns stays bounded even when opportunistic syncs are lost.
type Sweeper struct {
	sync     *ProjectionSync
	repo     Repository
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(sync *ProjectionSync, repo Repository, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{sync: sync, repo: repo, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce re-syncs all patients, logging per-patient failures and moving on.
func (w *Sweeper) SweepOnce(ctx context.Context) {
	ids, err := w.repo.ListIDs(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("projection sweep: list patients failed")
		return
	}

	repaired := 0
	for _, id := range ids {
		if err := w.sync.Sync(ctx, id); err != nil {
			w.logger.Warn().Err(err).Str("patient_id", id.String()).Msg("projection sweep: sync failed")
			continue
		}
		repaired++
	}
	w.logger.Debug().Int("patients", repaired).Msg("projection sweep completed")
}
