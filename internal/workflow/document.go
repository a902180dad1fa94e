package workflow

import (
	"github.com/google/uuid"

	"fleetdocs/internal/fleet"
	"fleetdocs/pkg/models"
)

// Status is a document's position in the per-document workflow.
//
//	pending → scanning → {matched | not_found | error}
//	matched → uploaded
//	not_found|error → matched   (manual plate entry)
//
// uploaded and removed are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusScanning Status = "scanning"
	StatusMatched  Status = "matched"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
	StatusUploaded Status = "uploaded"
)

// Image is one user-submitted document photograph.
type Image struct {
	Name string
	Data []byte
}

// UploadedDocument tracks one submitted image through recognition, matching,
// manual correction and persistence. Owned exclusively by the session that
// created it.
type UploadedDocument struct {
	ID     uuid.UUID
	Image  Image
	Status Status

	// ExtractedPlate and NormalizedPlate are the plate candidate that the
	// cascade (or provider guess, or manual entry) produced.
	ExtractedPlate  string
	NormalizedPlate string

	// Data is the full extracted field set, nil until recognition ran.
	Data *models.ExtractedVehicleData

	// Vehicle is set once the fleet matcher found the document's vehicle.
	Vehicle *fleet.VehicleRef

	// ManualPlate holds the operator-supplied override, when used.
	ManualPlate string

	// Provider records which recognition tier produced the text.
	Provider string

	// Message carries the operator-facing explanation for not_found and
	// error states.
	Message string
}

// StatusUpdate is the per-document outcome of a batch recognition run.
type StatusUpdate struct {
	DocumentID uuid.UUID `json:"document_id"`
	Status     Status    `json:"status"`
	Plate      string    `json:"plate,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// CommitResult is the per-document outcome of a commit.
type CommitResult struct {
	DocumentID    uuid.UUID `json:"document_id"`
	Status        Status    `json:"status"`
	FieldsChanged bool      `json:"fields_changed"`
	Message       string    `json:"message,omitempty"`
}
