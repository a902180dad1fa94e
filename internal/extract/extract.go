// Package extract implements the field extractor cascade for vehicle
// registration documents.
//
// OCR output from photographed registration cards is noisy and inconsistently
// formatted (skew, partial barcodes, bilingual layout), so each field carries
// an ordered list of competing patterns rather than a single strict parser.
// The first pattern whose capture passes the field's plausibility filter wins.
// The filters are the guard against false positives: a bare 4-digit year is
// never accepted as a plate, a 14-character token is never accepted as a VIN.
package extract

import (
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"fleetdocs/internal/logger"
	"fleetdocs/pkg/models"
)

// ErrNoPlateCandidate is returned when no plate pattern matched and the bare
// digit-run fallback found nothing either. Not a failure of the extractor:
// callers route the document to manual entry.
var ErrNoPlateCandidate = errors.New("no plate candidate found in document text")

// Options configures the extractor.
type Options struct {
	// DisableBarePlateFallback turns off the last-resort "first bare 4-8
	// digit run" plate heuristic, trading recall for precision on documents
	// that print unrelated serial numbers near the plate.
	DisableBarePlateFallback bool

	// Now supplies the current time for the model-year plausibility bound.
	// Defaults to time.Now.
	Now func() time.Time
}

// Extractor runs the per-field pattern cascades over normalized document text.
type Extractor struct {
	opts Options
	log  zerolog.Logger
}

// New creates an extractor.
func New(opts Options) *Extractor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Extractor{
		opts: opts,
		log:  logger.WithComponent("extract"),
	}
}

// Extract runs the field cascade over raw OCR text. guess holds fields the
// recognition provider already supplied; guess values are never overwritten,
// the cascade only fills the gaps. Returns ErrNoPlateCandidate when no plate
// survived filtering, in which case no other field is extracted.
func (e *Extractor) Extract(rawText string, guess *models.ExtractedVehicleData) (*models.ExtractedVehicleData, error) {
	text := NormalizeText(rawText)

	data := &models.ExtractedVehicleData{}
	if guess != nil {
		*data = *guess
	}

	if data.PlateNumber == "" {
		plate, ok := e.extractPlate(text)
		if !ok {
			return nil, ErrNoPlateCandidate
		}
		data.PlateNumber = plate
	}
	data.PlateNormalized = NormalizePlate(data.PlateNumber)

	if data.VIN == "" {
		data.VIN = e.extractVIN(text)
	}
	if data.EngineNumber == "" {
		data.EngineNumber = firstCapture(enginePatterns, text, engineValue)
	}
	if data.Make == "" {
		if mk, ok := lookupVocab(text, knownMakes); ok {
			data.Make = mk
		}
	}
	if data.Model == "" {
		data.Model = firstCapture(modelPatterns, text, modelValue)
	}
	if data.Year == 0 {
		data.Year = e.extractYear(text)
	}
	if data.Color == "" {
		if color, ok := lookupVocab(text, knownColors); ok {
			data.Color = color
		}
	}
	if data.SeatingCapacity == 0 {
		data.SeatingCapacity = extractSeats(text)
	}
	if data.RegistrationDate.IsZero() {
		data.RegistrationDate, _ = firstDate(registrationDatePatterns, text)
	}
	if data.RegistrationExpiry.IsZero() {
		data.RegistrationExpiry, _ = firstDate(registrationExpiryPatterns, text)
	}
	if data.InsuranceExpiry.IsZero() {
		data.InsuranceExpiry, _ = firstDate(insuranceExpiryPatterns, text)
	}

	e.log.Debug().
		Str("plate", data.PlateNumber).
		Str("plate_normalized", data.PlateNormalized).
		Str("vin", data.VIN).
		Str("make", data.Make).
		Int("year", data.Year).
		Msg("field cascade completed")

	return data, nil
}

// extractPlate tries the labeled plate patterns first, then optionally the
// bare digit-run fallback.
func (e *Extractor) extractPlate(text string) (string, bool) {
	if plate := firstCapture(platePatterns, text, plateDigits); plate != "" {
		return plate, true
	}
	if e.opts.DisableBarePlateFallback {
		return "", false
	}
	for _, run := range barePlateRun.FindAllString(text, -1) {
		if plate, ok := plateDigits(run); ok {
			return plate, true
		}
	}
	return "", false
}

func (e *Extractor) extractVIN(text string) string {
	return firstCapture(vinPatterns, text, func(s string) (string, bool) {
		if !validVIN(s) {
			return "", false
		}
		return s, true
	})
}

func (e *Extractor) extractYear(text string) int {
	year := 0
	firstCapture(yearPatterns, text, func(s string) (string, bool) {
		y, err := strconv.Atoi(s)
		if err != nil || !YearInRange(y, e.opts.Now()) {
			return "", false
		}
		year = y
		return s, true
	})
	return year
}

func extractSeats(text string) int {
	seats := 0
	firstCapture(seatPatterns, text, func(s string) (string, bool) {
		n, err := strconv.Atoi(s)
		if err != nil || !SeatsInRange(n) {
			return "", false
		}
		seats = n
		return s, true
	})
	return seats
}

// firstCapture iterates a pattern list in priority order and returns the
// first capture accepted by the validator, short-circuiting on success.
func firstCapture(patterns []fieldPattern, text string, validate func(string) (string, bool)) string {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v, ok := validate(m[1]); ok {
			return v
		}
	}
	return ""
}

func firstDate(patterns []fieldPattern, text string) (time.Time, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if t, ok := parseDate(m[1]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearInRange is the model-year plausibility filter: 1990 through one year
// past the current year (next year's models circulate before January).
func YearInRange(year int, now time.Time) bool {
	return year >= 1990 && year <= now.Year()+1
}

// SeatsInRange is the seating-capacity plausibility filter.
func SeatsInRange(n int) bool {
	return n >= 2 && n <= 50
}

// ValidVIN reports whether s passes the chassis number plausibility filter.
func ValidVIN(s string) bool {
	return validVIN(s)
}

// PlateCandidate strips non-digits from s and reports whether the result is a
// plausible plate (4-8 digits).
func PlateCandidate(s string) (string, bool) {
	return plateDigits(s)
}

// CanonicalMake maps any known manufacturer rendering to its canonical name.
func CanonicalMake(s string) (string, bool) {
	return lookupVocab(s, knownMakes)
}

// CanonicalColor maps any known color rendering to its canonical name.
func CanonicalColor(s string) (string, bool) {
	return lookupVocab(s, knownColors)
}

// ParseDocumentDate parses a date token using the document date layouts.
func ParseDocumentDate(s string) (time.Time, bool) {
	return parseDate(s)
}
