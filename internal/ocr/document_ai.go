package ocr

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"fleetdocs/internal/extract"
	"fleetdocs/internal/logger"
	"fleetdocs/pkg/models"
)

// documentAIGuesser turns a custom Document AI processor response into a
// structured guess of the vehicle fields. Every mapped value still passes the
// same plausibility filters as the local cascade — a provider guess is never
// trusted past what a regex capture would be.
type documentAIGuesser struct {
	client    *documentai.DocumentProcessorClient
	processor string
	log       zerolog.Logger
}

func newDocumentAIGuesser(ctx context.Context, cfg VisionConfig, creds []option.ClientOption) (*documentAIGuesser, error) {
	opts := append([]option.ClientOption{}, creds...)
	if cfg.Location != "" && cfg.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	location := cfg.Location
	if location == "" {
		location = "us"
	}

	return &documentAIGuesser{
		client: client,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, location, cfg.ProcessorID),
		log: logger.WithComponent("document-ai"),
	}, nil
}

func (g *documentAIGuesser) close() error {
	return g.client.Close()
}

// extract requests entity extraction for one image and maps the entities onto
// ExtractedVehicleData.
func (g *documentAIGuesser) extract(ctx context.Context, image []byte) (*models.ExtractedVehicleData, error) {
	req := &documentaipb.ProcessRequest{
		Name: g.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: http.DetectContentType(image),
			},
		},
	}

	resp, err := g.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("no document in Document AI response")
	}

	data := &models.ExtractedVehicleData{}
	for _, entity := range resp.Document.Entities {
		value := strings.TrimSpace(entity.MentionText)
		if value == "" {
			continue
		}

		g.log.Debug().
			Str("entity_type", entity.Type).
			Str("value", value).
			Float32("confidence", entity.Confidence).
			Msg("processing Document AI entity")

		switch entity.Type {
		case "plate_number", "license_plate", "vehicle_number":
			if plate, ok := extract.PlateCandidate(value); ok {
				data.PlateNumber = plate
			}
		case "vin", "chassis_number":
			if extract.ValidVIN(value) {
				data.VIN = value
			}
		case "engine_number":
			data.EngineNumber = value
		case "make", "manufacturer":
			if mk, ok := extract.CanonicalMake(value); ok {
				data.Make = mk
			}
		case "model":
			data.Model = value
		case "year", "model_year":
			if y, err := strconv.Atoi(value); err == nil && extract.YearInRange(y, time.Now()) {
				data.Year = y
			}
		case "color":
			if c, ok := extract.CanonicalColor(value); ok {
				data.Color = c
			}
		case "seating_capacity", "seats":
			if n, err := strconv.Atoi(value); err == nil && extract.SeatsInRange(n) {
				data.SeatingCapacity = n
			}
		case "registration_date":
			if t, ok := entityDate(entity, value); ok {
				data.RegistrationDate = t
			}
		case "registration_expiry", "expiry_date":
			if t, ok := entityDate(entity, value); ok {
				data.RegistrationExpiry = t
			}
		case "insurance_expiry":
			if t, ok := entityDate(entity, value); ok {
				data.InsuranceExpiry = t
			}
		}
	}

	if data.IsEmpty() {
		return nil, nil
	}
	return data, nil
}

// entityDate prefers the processor's normalized date value and falls back to
// parsing the mention text.
func entityDate(entity *documentaipb.Document_Entity, value string) (time.Time, bool) {
	if entity.NormalizedValue != nil {
		if dv := entity.NormalizedValue.GetDateValue(); dv != nil {
			return time.Date(int(dv.Year), time.Month(dv.Month), int(dv.Day), 0, 0, 0, 0, time.UTC), true
		}
	}
	return extract.ParseDocumentDate(value)
}
