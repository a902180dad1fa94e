// Package fleet holds the fleet registry, the per-session plate index used
// for document matching, and the record merge applied on commit.
package fleet

import (
	"strings"

	"fleetdocs/internal/extract"
	"fleetdocs/pkg/models"
)

// VehicleRef identifies a registered vehicle to the matching and workflow
// layers without dragging the full record around.
type VehicleRef struct {
	ID    string `json:"id"`
	Plate string `json:"plate"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// MatchResult is produced by the matcher: the vehicle, the candidate plate
// string that produced the match, and its normalized form.
type MatchResult struct {
	Vehicle    VehicleRef `json:"vehicle"`
	Plate      string     `json:"plate"`
	Normalized string     `json:"normalized"`
}

// PlateIndex maps the fleet's known plates, raw and normalized, to vehicle
// identities. It is a pure function of the fleet's current plate list: build
// it once per matching session and rebuild whenever the list changes. A stale
// index can only produce false negatives — normalization is deterministic, so
// it never matches the wrong vehicle.
type PlateIndex struct {
	raw        map[string]VehicleRef
	normalized map[string]VehicleRef
	vehicles   []VehicleRef
}

// BuildIndex constructs the plate index from the registry's vehicle list.
// Vehicles without a plate are skipped. On raw or normalized key collisions
// the first vehicle wins, matching the registry's listing order.
func BuildIndex(vehicles []models.Vehicle) *PlateIndex {
	ix := &PlateIndex{
		raw:        make(map[string]VehicleRef, len(vehicles)),
		normalized: make(map[string]VehicleRef, len(vehicles)),
		vehicles:   make([]VehicleRef, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		plate := strings.TrimSpace(v.Plate)
		if plate == "" {
			continue
		}
		ref := VehicleRef{ID: v.ID, Plate: plate, Make: v.Make, Model: v.Model}
		ix.vehicles = append(ix.vehicles, ref)
		if _, dup := ix.raw[plate]; !dup {
			ix.raw[plate] = ref
		}
		norm := extract.NormalizePlate(plate)
		if _, dup := ix.normalized[norm]; !dup {
			ix.normalized[norm] = ref
		}
	}
	return ix
}

// Size returns the number of indexed vehicles.
func (ix *PlateIndex) Size() int {
	return len(ix.vehicles)
}

// Match finds the fleet vehicle for an ordered list of plate candidates
// (most confident first). For each candidate three tiers run in order: exact
// raw-string lookup, normalized lookup, then a linear scan comparing every
// vehicle's normalized plate against the candidate's normalized form. The
// first candidate that hits anything wins — no scoring across candidates.
func (ix *PlateIndex) Match(candidates []string) (*MatchResult, bool) {
	for _, candidate := range candidates {
		plate := strings.TrimSpace(candidate)
		if plate == "" {
			continue
		}

		if ref, ok := ix.raw[plate]; ok {
			return &MatchResult{Vehicle: ref, Plate: plate, Normalized: extract.NormalizePlate(plate)}, true
		}

		norm := extract.NormalizePlate(plate)
		if ref, ok := ix.normalized[norm]; ok {
			return &MatchResult{Vehicle: ref, Plate: plate, Normalized: norm}, true
		}

		for _, ref := range ix.vehicles {
			if extract.NormalizePlate(ref.Plate) == norm {
				return &MatchResult{Vehicle: ref, Plate: plate, Normalized: norm}, true
			}
		}
	}
	return nil, false
}
