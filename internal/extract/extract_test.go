package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdocs/pkg/models"
)

func fixedNow() time.Time {
	return time.Date(2026, time.August, 27, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor() *Extractor {
	return New(Options{Now: fixedNow})
}

func TestExtractRegistrationCard(t *testing.T) {
	e := newTestExtractor()

	text := `Vehicle Registration
Vehicle No. 008205
Chassis No. ABCDE1234567890
Engine No. G4FC-123456
TOYOTA Camry
Model: Camry
Year: 2019
اللون: أبيض
Seats: 5
Registration Date: 15/03/2023
Expiry Date: 15/03/2027`

	data, err := e.Extract(text, nil)
	require.NoError(t, err)

	assert.Equal(t, "008205", data.PlateNumber)
	assert.Equal(t, "8205", data.PlateNormalized)
	assert.Equal(t, "ABCDE1234567890", data.VIN)
	assert.Equal(t, "G4FC-123456", data.EngineNumber)
	assert.Equal(t, "Toyota", data.Make)
	assert.Equal(t, "Camry", data.Model)
	assert.Equal(t, 2019, data.Year)
	assert.Equal(t, "أبيض", data.Color)
	assert.Equal(t, 5, data.SeatingCapacity)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), data.RegistrationDate)
	assert.Equal(t, time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC), data.RegistrationExpiry)
}

func TestExtractArabicIndicPlate(t *testing.T) {
	e := newTestExtractor()

	data, err := e.Extract("رقم اللوحة ٠٠٨٢٠٥", nil)
	require.NoError(t, err)
	assert.Equal(t, "008205", data.PlateNumber)
	assert.Equal(t, "8205", data.PlateNormalized)
}

func TestExtractNoPlateCandidate(t *testing.T) {
	e := newTestExtractor()

	// No bare digit run of 4-8 characters anywhere: the 11-digit run inside
	// the chassis number is not word-bounded.
	_, err := e.Extract("Chassis No. ABCDE1234567890 color white", nil)
	assert.ErrorIs(t, err, ErrNoPlateCandidate)
}

func TestExtractBarePlateFallback(t *testing.T) {
	e := newTestExtractor()

	data, err := e.Extract("illegible header 45678 trailing text", nil)
	require.NoError(t, err)
	assert.Equal(t, "45678", data.PlateNumber)
	assert.Equal(t, "45678", data.PlateNormalized)
}

func TestExtractBarePlateFallbackDisabled(t *testing.T) {
	e := New(Options{Now: fixedNow, DisableBarePlateFallback: true})

	_, err := e.Extract("illegible header 45678 trailing text", nil)
	assert.ErrorIs(t, err, ErrNoPlateCandidate)
}

func TestExtractGuessNeverOverwritten(t *testing.T) {
	e := newTestExtractor()

	guess := &models.ExtractedVehicleData{
		PlateNumber: "9999",
		Make:        "Nissan",
	}
	text := "Plate No: 1234 TOYOTA Model: Corolla Year: 2015"

	data, err := e.Extract(text, guess)
	require.NoError(t, err)

	// Guess fields win; the cascade only fills the gaps.
	assert.Equal(t, "9999", data.PlateNumber)
	assert.Equal(t, "9999", data.PlateNormalized)
	assert.Equal(t, "Nissan", data.Make)
	assert.Equal(t, "Corolla", data.Model)
	assert.Equal(t, 2015, data.Year)
}

func TestYearPlausibilityGuard(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text string
		want int
	}{
		{"Plate No: 77777 Year: 1989", 0},
		{"Plate No: 77777 Year: 1990", 1990},
		{"Plate No: 77777 Year: 2027", 2027}, // current year + 1
		{"Plate No: 77777 Year: 2030", 0},
	}
	for _, tt := range tests {
		data, err := e.Extract(tt.text, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, data.Year, "text %q", tt.text)
	}
}

func TestYearNotMistakenForPlate(t *testing.T) {
	e := newTestExtractor()

	// The labeled plate pattern must win over the bare digit-run heuristic
	// even though the year appears first in the text.
	data, err := e.Extract("Year: 2019 Plate No: 55443", nil)
	require.NoError(t, err)
	assert.Equal(t, "55443", data.PlateNumber)
	assert.Equal(t, 2019, data.Year)
}

func TestSeatingCapacityGuard(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		text string
		want int
	}{
		{"Plate No: 77777 Seats: 1", 0},
		{"Plate No: 77777 Seats: 2", 2},
		{"Plate No: 77777 Seats: 50", 50},
		{"Plate No: 77777 Seats: 51", 0},
	}
	for _, tt := range tests {
		data, err := e.Extract(tt.text, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, data.SeatingCapacity, "text %q", tt.text)
	}
}

func TestVINPlausibility(t *testing.T) {
	assert.True(t, ValidVIN("ABCDE1234567890"))   // 15 chars
	assert.True(t, ValidVIN("ABCDE123456789012")) // 17 chars
	assert.False(t, ValidVIN("ABCDE123"))         // too short
	assert.False(t, ValidVIN("ABCDEFGHIJKLMNO"))  // no digit
	assert.False(t, ValidVIN("123456789012345"))  // no letter
	assert.False(t, ValidVIN("ABCDE12345678901x!")) // bad char / too long
}

func TestExtractRejectsShortVINToken(t *testing.T) {
	e := newTestExtractor()

	data, err := e.Extract("Plate No: 77777 Chassis No. ABC123", nil)
	require.NoError(t, err)
	assert.Empty(t, data.VIN)
}

func TestExtractDateGuard(t *testing.T) {
	e := newTestExtractor()

	// 31/02 is not a valid Gregorian date under any accepted layout.
	data, err := e.Extract("Plate No: 77777 Registration Date: 31/02/2023", nil)
	require.NoError(t, err)
	assert.True(t, data.RegistrationDate.IsZero())
}
