package fleet

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"fleetdocs/internal/logger"
	"fleetdocs/pkg/models"
)

// VehicleUpdater is the registry write interface the merger needs.
type VehicleUpdater interface {
	UpdateVehicle(ctx context.Context, id string, fields bson.M) error
}

// Merger writes newly recognized document fields into matched fleet records.
type Merger struct {
	registry VehicleUpdater
	log      zerolog.Logger
}

// NewMerger creates a record merger on top of a registry.
func NewMerger(registry VehicleUpdater) *Merger {
	return &Merger{
		registry: registry,
		log:      logger.WithComponent("record-merge"),
	}
}

// BuildSparseUpdate keeps only the non-empty extracted fields. The plate is
// deliberately excluded: it is the matching key, and rewriting it from a
// noisy OCR capture could detach the record from future matches.
func BuildSparseUpdate(data *models.ExtractedVehicleData) bson.M {
	fields := bson.M{}
	if data == nil {
		return fields
	}
	if data.VIN != "" {
		fields["vin"] = data.VIN
	}
	if data.EngineNumber != "" {
		fields["engine_number"] = data.EngineNumber
	}
	if data.Make != "" {
		fields["make"] = data.Make
	}
	if data.Model != "" {
		fields["model"] = data.Model
	}
	if data.Year != 0 {
		fields["year"] = data.Year
	}
	if data.Color != "" {
		fields["color"] = data.Color
	}
	if data.SeatingCapacity != 0 {
		fields["seating_capacity"] = data.SeatingCapacity
	}
	if !data.RegistrationDate.IsZero() {
		fields["registration_date"] = data.RegistrationDate
	}
	if !data.RegistrationExpiry.IsZero() {
		fields["registration_expiry"] = data.RegistrationExpiry
	}
	if !data.InsuranceExpiry.IsZero() {
		fields["insurance_expiry"] = data.InsuranceExpiry
	}
	return fields
}

// Merge applies the sparse update to the matched vehicle record. Additive and
// corrective only: an empty extracted field never overwrites a populated one.
// Returns whether any field was written; an empty update skips the write
// entirely.
func (m *Merger) Merge(ctx context.Context, vehicleID string, data *models.ExtractedVehicleData) (bool, error) {
	fields := BuildSparseUpdate(data)
	if len(fields) == 0 {
		m.log.Debug().Str("vehicle_id", vehicleID).Msg("no extracted fields to merge")
		return false, nil
	}

	if err := m.registry.UpdateVehicle(ctx, vehicleID, fields); err != nil {
		return false, err
	}

	m.log.Info().
		Str("vehicle_id", vehicleID).
		Int("fields", len(fields)).
		Msg("merged extracted fields into fleet record")
	return true, nil
}
