package patient

import (
	"time"

	"github.com/google/uuid"
)

// Case complexity projection values.
const (
	ComplexitySimple  = "simple"
	ComplexityComplex = "complex"
)

// Patient maps to the patients table. HasADLFile and CaseComplexity are
// derived projection columns maintained by the sync service; they summarize
// the patient's ADL files and may lag the true state.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	MRN            string     `db:"mrn" json:"mrn"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	HasADLFile     bool       `db:"has_adl_file" json:"has_adl_file"`
	CaseComplexity string     `db:"case_complexity" json:"case_complexity"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
