package models

import (
	"time"
)

// ExtractedVehicleData holds the vehicle attributes recognized from a
// registration document. Every populated field has already passed its
// field-specific plausibility filter; a zero value means "not extracted",
// never "extracted but invalid".
type ExtractedVehicleData struct {
	// PlateNumber is the raw plate string as it appeared in the document text.
	PlateNumber string `json:"plate_number,omitempty"`

	// PlateNormalized is PlateNumber with non-digits stripped and leading
	// zeros removed, the canonical form used for fleet matching.
	PlateNormalized string `json:"plate_normalized,omitempty"`

	// VIN is the chassis number, 15-17 alphanumeric characters with at
	// least one letter and one digit.
	VIN string `json:"vin,omitempty"`

	EngineNumber string `json:"engine_number,omitempty"`

	// Make is the canonical manufacturer name from the known-makes vocabulary.
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`

	// Year is the model year, within 1990..(current year + 1).
	Year int `json:"year,omitempty"`

	// Color is the canonical color name from the controlled vocabulary.
	Color string `json:"color,omitempty"`

	// SeatingCapacity is within 2..50.
	SeatingCapacity int `json:"seating_capacity,omitempty"`

	RegistrationDate   time.Time `json:"registration_date,omitempty"`
	RegistrationExpiry time.Time `json:"registration_expiry,omitempty"`
	InsuranceExpiry    time.Time `json:"insurance_expiry,omitempty"`
}

// IsEmpty reports whether no field was extracted at all.
func (d *ExtractedVehicleData) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.PlateNumber == "" && d.VIN == "" && d.EngineNumber == "" &&
		d.Make == "" && d.Model == "" && d.Year == 0 && d.Color == "" &&
		d.SeatingCapacity == 0 && d.RegistrationDate.IsZero() &&
		d.RegistrationExpiry.IsZero() && d.InsuranceExpiry.IsZero()
}
