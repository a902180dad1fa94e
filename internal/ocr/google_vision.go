package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"fleetdocs/internal/logger"
)

// VisionProvider is the primary recognition provider: Google Cloud Vision
// document text detection, optionally paired with a Document AI processor
// that supplies a structured guess of the vehicle fields.
type VisionProvider struct {
	client *vision.ImageAnnotatorClient
	guess  *documentAIGuesser // nil when no processor is configured
	log    zerolog.Logger
}

// VisionConfig configures the primary provider.
type VisionConfig struct {
	// ProjectID is the Google Cloud project ID.
	ProjectID string

	// Location is the Document AI processing location (e.g. "us", "eu").
	Location string

	// ProcessorID enables the structured guess when set. Leave empty to
	// run text detection only.
	ProcessorID string
}

// NewVisionProvider creates the primary provider with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON first, then
// GOOGLE_APPLICATION_CREDENTIALS, then application default credentials.
func NewVisionProvider(ctx context.Context, cfg VisionConfig) (*VisionProvider, error) {
	const op = "NewVisionProvider"

	opts := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	p := &VisionProvider{
		client: client,
		log:    logger.WithComponent("google-vision"),
	}

	if cfg.ProcessorID != "" {
		guesser, err := newDocumentAIGuesser(ctx, cfg, opts)
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create Document AI client")
		}
		p.guess = guesser
	}

	return p, nil
}

// NewVisionProviderWithClient creates a provider with an explicit client (for testing).
func NewVisionProviderWithClient(client *vision.ImageAnnotatorClient) *VisionProvider {
	return &VisionProvider{
		client: client,
		log:    logger.WithComponent("google-vision"),
	}
}

func (p *VisionProvider) Name() string { return "google-vision" }

// Recognize runs document text detection on one image. When a Document AI
// processor is configured, a structured guess is requested as well; a guess
// failure is logged but does not fail the call — text alone is a success.
func (p *VisionProvider) Recognize(ctx context.Context, image []byte) (*Result, error) {
	const op = "Recognize"

	if len(image) == 0 {
		return nil, WrapOCRError(op, ErrEmptyImage, "")
	}

	img, err := vision.NewImageFromReader(bytes.NewReader(image))
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to prepare image")
	}

	annotation, err := p.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return nil, WrapOCRError(op, ErrEmptyText, "")
	}

	result := &Result{Text: annotation.Text}

	if p.guess != nil {
		guess, err := p.guess.extract(ctx, image)
		if err != nil {
			p.log.Warn().Err(err).Msg("structured guess failed, continuing with text only")
		} else {
			result.Guess = guess
		}
	}

	return result, nil
}

// Close closes the underlying clients.
func (p *VisionProvider) Close() error {
	if p.guess != nil {
		if err := p.guess.close(); err != nil {
			p.log.Warn().Err(err).Msg("failed to close Document AI client")
		}
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// credentialOptions resolves Google credentials from the environment.
func credentialOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}
