package linkage

import (
	"time"

	"github.com/google/uuid"
)

// Saga log states. started is the in-flight intent marker; the other states
// are terminal and record how the saga ended.
const (
	SagaStarted            = "started"
	SagaCompleted          = "completed"
	SagaCompensated        = "compensated"
	SagaCompensationFailed = "compensation_failed"
	SagaFailed             = "failed"
)

// SagaLog is the persisted intent record for one linkage run. A row stuck in
// started or compensation_failed marks work for manual reconciliation.
type SagaLog struct {
	ID         uuid.UUID  `db:"id"          json:"id"`
	PatientID  uuid.UUID  `db:"patient_id"  json:"patient_id"`
	ProformaID *uuid.UUID `db:"proforma_id" json:"proforma_id,omitempty"`
	ADLFileID  *uuid.UUID `db:"adl_file_id" json:"adl_file_id,omitempty"`
	State      string     `db:"state"       json:"state"`
	Step       int        `db:"step"        json:"step"`
	Error      *string    `db:"error"       json:"error,omitempty"`
	StartedAt  time.Time  `db:"started_at"  json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}
