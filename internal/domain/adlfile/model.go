package adlfile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// File custody states. Archived is terminal.
const (
	StatusCreated   = "created"
	StatusStored    = "stored"
	StatusRetrieved = "retrieved"
	StatusArchived  = "archived"
)

// Movement types recorded in the custody ledger.
const (
	MovementCreated   = "created"
	MovementStored    = "stored"
	MovementRetrieved = "retrieved"
	MovementReturned  = "returned"
	MovementArchived  = "archived"
)

// Physical locations a file moves between.
const (
	LocationDoctorOffice = "Doctor Office"
	LocationRecordRoom   = "Record Room"
	LocationArchiveRoom  = "Archive Room"
)

// ADLFile is the archival dossier opened for a complex-case patient. Its
// physical custody is tracked through the movement ledger; adl_no is the
// human-readable identifier printed on the physical folder.
type ADLFile struct {
	ID               uuid.UUID  `db:"id"                 json:"id"`
	PatientID        uuid.UUID  `db:"patient_id"         json:"patient_id"`
	ProformaID       *uuid.UUID `db:"proforma_id"        json:"proforma_id,omitempty"`
	ADLNo            string     `db:"adl_no"             json:"adl_no"`
	Status           string     `db:"status"             json:"status"`
	CurrentLocation  string     `db:"current_location"   json:"current_location"`
	CreatedBy        uuid.UUID  `db:"created_by"         json:"created_by"`
	LastAccessedBy   *uuid.UUID `db:"last_accessed_by"   json:"last_accessed_by,omitempty"`
	LastAccessedDate *time.Time `db:"last_accessed_date" json:"last_accessed_date,omitempty"`
	TotalVisits      int        `db:"total_visits"       json:"total_visits"`
	IsActive         bool       `db:"is_active"          json:"is_active"`
	Notes            *string    `db:"notes"              json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"         json:"updated_at"`
}

// MovementRecord is one append-only entry in a file's custody ledger.
type MovementRecord struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	ADLFileID    uuid.UUID `db:"adl_file_id"   json:"adl_file_id"`
	PatientID    uuid.UUID `db:"patient_id"    json:"patient_id"`
	MovedBy      uuid.UUID `db:"moved_by"      json:"moved_by"`
	MovementType string    `db:"movement_type" json:"movement_type"`
	FromLocation string    `db:"from_location" json:"from_location"`
	ToLocation   string    `db:"to_location"   json:"to_location"`
	MovedAt      time.Time `db:"moved_at"      json:"moved_at"`
	Notes        *string   `db:"notes"         json:"notes,omitempty"`
}

// FormatNumber renders a sequence value as a display number, e.g. ADL-000001.
func FormatNumber(n int64) string {
	return fmt.Sprintf("ADL-%06d", n)
}
