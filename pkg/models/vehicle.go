package models

import (
	"time"
)

// Vehicle represents a registered fleet vehicle as stored in the registry.
type Vehicle struct {
	ID                 string    `bson:"_id,omitempty" json:"id"`
	Plate              string    `bson:"plate" json:"plate"`
	Make               string    `bson:"make,omitempty" json:"make,omitempty"`
	Model              string    `bson:"model,omitempty" json:"model,omitempty"`
	Year               int       `bson:"year,omitempty" json:"year,omitempty"`
	Color              string    `bson:"color,omitempty" json:"color,omitempty"`
	VIN                string    `bson:"vin,omitempty" json:"vin,omitempty"`
	EngineNumber       string    `bson:"engine_number,omitempty" json:"engine_number,omitempty"`
	SeatingCapacity    int       `bson:"seating_capacity,omitempty" json:"seating_capacity,omitempty"`
	RegistrationDate   time.Time `bson:"registration_date,omitempty" json:"registration_date,omitempty"`
	RegistrationExpiry time.Time `bson:"registration_expiry,omitempty" json:"registration_expiry,omitempty"`
	InsuranceExpiry    time.Time `bson:"insurance_expiry,omitempty" json:"insurance_expiry,omitempty"`
	CreatedAt          time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt          time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
