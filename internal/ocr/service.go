// Package ocr provides document image recognition for the vehicle document
// pipeline.
//
// Recognition is two-tiered: a primary cloud provider (Google Cloud Vision
// text detection, optionally paired with a Document AI processor that returns
// a structured guess of the vehicle fields) and a local Tesseract fallback
// engine running in single-language mode. The Orchestrator drives the primary
// call and falls back exactly once; retries beyond that are a user-initiated
// re-submit.
//
// Required Environment Variables (primary provider):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID
//   - DOCUMENT_AI_PROCESSOR_ID: optional; enables the structured guess
package ocr

import (
	"context"
	"time"

	"fleetdocs/pkg/models"
)

// Provider names reported in RecognitionResult.Provider.
const (
	ProviderPrimary  = "primary"
	ProviderFallback = "fallback"
)

// Provider is a single recognition backend.
type Provider interface {
	// Name identifies the backend for diagnostics (e.g. "google-vision").
	Name() string

	// Recognize extracts text (and optionally a structured guess) from one
	// document image.
	Recognize(ctx context.Context, image []byte) (*Result, error)
}

// Result is the output of a single provider call.
type Result struct {
	// Text is the raw recognized text.
	Text string

	// Guess holds vehicle fields the provider supplied directly, bypassing
	// the local extraction cascade. Nil when the provider only returns text.
	Guess *models.ExtractedVehicleData
}

// RecognitionResult is the orchestrator's output for one document image.
type RecognitionResult struct {
	// Text is the raw recognized text from whichever provider succeeded.
	Text string

	// Guess holds provider-supplied vehicle fields, if any. Guess values
	// take priority over anything the extraction cascade derives.
	Guess *models.ExtractedVehicleData

	// Provider records which tier produced the result: "primary" or
	// "fallback".
	Provider string

	// Duration is how long recognition took, both tiers included.
	Duration time.Duration
}
