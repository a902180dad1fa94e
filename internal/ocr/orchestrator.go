package ocr

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fleetdocs/internal/logger"
)

// Orchestrator drives one recognition attempt per document: the primary cloud
// provider first, then exactly one local fallback. It never retries beyond
// that — a retry is the operator re-submitting the document.
type Orchestrator struct {
	primary  Provider
	fallback Provider
	log      zerolog.Logger
}

// NewOrchestrator wires the two recognition tiers together.
func NewOrchestrator(primary, fallback Provider) *Orchestrator {
	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		log:      logger.WithComponent("recognition"),
	}
}

// Recognize extracts text from one document image, recording which tier
// produced the result. An explicit non-success from the primary (including an
// empty-text response) triggers the fallback the same way a transport error
// does. Returns ErrAllProvidersFailed when both tiers fail.
func (o *Orchestrator) Recognize(ctx context.Context, image []byte) (*RecognitionResult, error) {
	const op = "Recognize"
	start := time.Now()

	res, primaryErr := o.primary.Recognize(ctx, image)
	if primaryErr == nil {
		return &RecognitionResult{
			Text:     res.Text,
			Guess:    res.Guess,
			Provider: ProviderPrimary,
			Duration: time.Since(start),
		}, nil
	}

	o.log.Warn().
		Err(primaryErr).
		Str("provider", o.primary.Name()).
		Msg("primary recognition failed, falling back")

	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "canceled before fallback")
	}

	res, fallbackErr := o.fallback.Recognize(ctx, image)
	if fallbackErr != nil {
		o.log.Error().
			Err(fallbackErr).
			Str("provider", o.fallback.Name()).
			Msg("fallback recognition failed")
		return nil, WrapOCRError(op, ErrAllProvidersFailed,
			"primary: "+primaryErr.Error()+"; fallback: "+fallbackErr.Error())
	}

	return &RecognitionResult{
		Text:     res.Text,
		Guess:    res.Guess,
		Provider: ProviderFallback,
		Duration: time.Since(start),
	}, nil
}
