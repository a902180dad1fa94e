package fleet

import (
	"errors"
)

var (
	// ErrNoMatch indicates that every plate candidate was exhausted
	// against the index with no hit.
	ErrNoMatch = errors.New("no fleet vehicle matches the plate candidates")

	// ErrVehicleNotFound is returned by registry writes targeting an
	// unknown vehicle id.
	ErrVehicleNotFound = errors.New("vehicle not found in registry")

	// ErrRegistryUnavailable is returned when the registry store cannot be
	// reached.
	ErrRegistryUnavailable = errors.New("fleet registry unavailable")
)
