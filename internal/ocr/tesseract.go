package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"fleetdocs/internal/logger"
)

// TesseractProvider is the local fallback engine, backed by gosseract. It
// runs in single-language mode: document cards are recognized against one
// traineddata set at a time. CPU-bound — callers cap its concurrency.
type TesseractProvider struct {
	language      string
	clientFactory func() *gosseract.Client
	log           zerolog.Logger
}

// NewTesseractProvider constructs the fallback engine for one language
// (e.g. "ara", "eng").
func NewTesseractProvider(language string) *TesseractProvider {
	return &TesseractProvider{
		language:      language,
		clientFactory: gosseract.NewClient,
		log:           logger.WithComponent("tesseract"),
	}
}

func (p *TesseractProvider) Name() string { return "tesseract" }

// Recognize performs local OCR on a single image. A fresh client per call
// keeps the provider safe for concurrent use.
func (p *TesseractProvider) Recognize(ctx context.Context, image []byte) (*Result, error) {
	const op = "Recognize"

	if len(image) == 0 {
		return nil, WrapOCRError(op, ErrEmptyImage, "")
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	c := p.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(p.language); err != nil {
		return nil, WrapOCRError(op, err, "failed to set language "+p.language)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return nil, WrapOCRError(op, err, "failed to set image")
	}

	text, err := c.Text()
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return nil, WrapOCRError(op, ErrEmptyText, "")
	}

	return &Result{Text: text}, nil
}
