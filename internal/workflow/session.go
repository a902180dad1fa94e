// Package workflow owns the per-document state machine and the operator
// session that drives a batch of uploaded registration documents through
// recognition, matching, manual correction and commit.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleetdocs/internal/extract"
	"fleetdocs/internal/fleet"
	"fleetdocs/internal/logger"
	"fleetdocs/internal/ocr"
	"fleetdocs/pkg/models"
)

// DocumentType recorded for every committed registration document.
const DocumentType = "registration"

const defaultWorkers = 3

// Recognizer is the recognition orchestrator interface the session depends on.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*ocr.RecognitionResult, error)
}

// ImageStorer persists original document images.
type ImageStorer interface {
	StoreImage(name string, data []byte) (string, error)
}

// RecordCreator persists document records on commit.
type RecordCreator interface {
	CreateDocumentRecord(ctx context.Context, vehicleID, imagePath, docType string) error
}

// RecordMerger writes extracted fields into matched fleet records.
type RecordMerger interface {
	Merge(ctx context.Context, vehicleID string, data *models.ExtractedVehicleData) (bool, error)
}

// SessionConfig wires a session's collaborators.
type SessionConfig struct {
	Recognizer Recognizer
	Extractor  *extract.Extractor
	Index      *fleet.PlateIndex
	Images     ImageStorer
	Records    RecordCreator
	Merger     RecordMerger

	// Workers bounds concurrent recognitions. Kept small: the cloud
	// provider is rate-limited and the fallback engine is CPU-bound.
	Workers int
}

// Session holds one operator's batch of uploaded documents. The plate index
// is treated as immutable for the session's lifetime; start a new session
// after the fleet's plate list changes.
type Session struct {
	mu    sync.Mutex
	docs  map[uuid.UUID]*UploadedDocument
	order []uuid.UUID

	recognizer Recognizer
	extractor  *extract.Extractor
	index      *fleet.PlateIndex
	images     ImageStorer
	records    RecordCreator
	merger     RecordMerger
	workers    int
	log        zerolog.Logger
}

// NewSession creates an empty document session.
func NewSession(cfg SessionConfig) *Session {
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Session{
		docs:       make(map[uuid.UUID]*UploadedDocument),
		recognizer: cfg.Recognizer,
		extractor:  cfg.Extractor,
		index:      cfg.Index,
		images:     cfg.Images,
		records:    cfg.Records,
		merger:     cfg.Merger,
		workers:    workers,
		log:        logger.WithComponent("workflow"),
	}
}

// SubmitImages registers a batch of document photographs, one pending
// document per image.
func (s *Session) SubmitImages(images []Image) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(images))
	for _, img := range images {
		id := uuid.New()
		s.docs[id] = &UploadedDocument{
			ID:     id,
			Image:  img,
			Status: StatusPending,
		}
		s.order = append(s.order, id)
		ids = append(ids, id)
	}
	s.log.Info().Int("count", len(ids)).Msg("documents submitted")
	return ids
}

// Documents returns a snapshot of the session's documents in submission order.
func (s *Session) Documents() []UploadedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]UploadedDocument, 0, len(s.order))
	for _, id := range s.order {
		if doc, ok := s.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out
}

// RunRecognition drives the batch through recognition and matching. Only
// pending documents among ids are processed (pass no ids to process every
// pending document). Each document's outcome is independent: recognitions run
// on a bounded worker pool and one failure never blocks or corrupts another.
// Results arriving for a document removed mid-flight are discarded.
func (s *Session) RunRecognition(ctx context.Context, ids []uuid.UUID) []StatusUpdate {
	targets := s.markScanning(ids)
	if len(targets) == 0 {
		return nil
	}

	updates := make([]StatusUpdate, len(targets))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(i int, id uuid.UUID, image Image) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			updates[i] = s.processDocument(ctx, id, image)
		}(i, target.id, target.image)
	}
	wg.Wait()

	return updates
}

type scanTarget struct {
	id    uuid.UUID
	image Image
}

// markScanning transitions the targeted pending documents to scanning and
// snapshots their images, all under the session lock.
func (s *Session) markScanning(ids []uuid.UUID) []scanTarget {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		ids = append([]uuid.UUID(nil), s.order...)
	}

	var targets []scanTarget
	for _, id := range ids {
		doc, ok := s.docs[id]
		if !ok || doc.Status != StatusPending {
			continue
		}
		doc.Status = StatusScanning
		targets = append(targets, scanTarget{id: id, image: doc.Image})
	}
	return targets
}

// processDocument runs recognition, extraction and matching for one document
// and applies the resulting transition.
func (s *Session) processDocument(ctx context.Context, id uuid.UUID, image Image) StatusUpdate {
	log := logger.WithDocument("workflow", id.String())

	recognition, err := s.recognizer.Recognize(ctx, image.Data)
	if err != nil {
		log.Error().Err(err).Msg("recognition failed")
		return s.apply(id, StatusUpdate{
			DocumentID: id,
			Status:     StatusError,
			Message:    fmt.Sprintf("recognition failed: %v", err),
		}, nil, nil)
	}

	data, err := s.extractor.Extract(recognition.Text, recognition.Guess)
	if err != nil {
		if errors.Is(err, extract.ErrNoPlateCandidate) {
			log.Info().Str("provider", recognition.Provider).Msg("no plate candidate found")
			return s.apply(id, StatusUpdate{
				DocumentID: id,
				Status:     StatusNotFound,
				Provider:   recognition.Provider,
				Message:    "no plate number could be read from the document; enter it manually",
			}, nil, nil)
		}
		log.Error().Err(err).Msg("field extraction failed")
		return s.apply(id, StatusUpdate{
			DocumentID: id,
			Status:     StatusError,
			Provider:   recognition.Provider,
			Message:    fmt.Sprintf("field extraction failed: %v", err),
		}, nil, nil)
	}

	match, ok := s.index.Match([]string{data.PlateNumber})
	if !ok {
		log.Info().
			Str("plate", data.PlateNumber).
			Str("provider", recognition.Provider).
			Msg("no fleet vehicle matched")
		return s.apply(id, StatusUpdate{
			DocumentID: id,
			Status:     StatusNotFound,
			Plate:      data.PlateNumber,
			Provider:   recognition.Provider,
			Message:    fmt.Sprintf("no fleet vehicle matches plate %s; enter the plate manually", data.PlateNumber),
		}, data, nil)
	}

	log.Info().
		Str("plate", match.Plate).
		Str("vehicle_id", match.Vehicle.ID).
		Str("provider", recognition.Provider).
		Msg("document matched")
	return s.apply(id, StatusUpdate{
		DocumentID: id,
		Status:     StatusMatched,
		Plate:      data.PlateNumber,
		Provider:   recognition.Provider,
	}, data, match)
}

// apply commits a recognition outcome to the document, unless the document
// was removed while its recognition was in flight, in which case the result
// is discarded.
func (s *Session) apply(id uuid.UUID, update StatusUpdate, data *models.ExtractedVehicleData, match *fleet.MatchResult) StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		s.log.Debug().Str("document_id", id.String()).Msg("discarding result for removed document")
		return update
	}

	doc.Status = update.Status
	doc.Provider = update.Provider
	doc.Message = update.Message
	if data != nil {
		doc.Data = data
		doc.ExtractedPlate = data.PlateNumber
		doc.NormalizedPlate = data.PlateNormalized
	}
	if match != nil {
		vehicle := match.Vehicle
		doc.Vehicle = &vehicle
		doc.NormalizedPlate = match.Normalized
	}
	return update
}

// EnterManualPlate resolves a not_found or error document with an
// operator-supplied plate string, matched against the same index as batch
// recognition. Returns the resulting status: matched on success, not_found
// when the plate is unknown to the fleet.
func (s *Session) EnterManualPlate(id uuid.UUID, plateText string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return "", ErrUnknownDocument
	}
	if doc.Status != StatusNotFound && doc.Status != StatusError {
		return doc.Status, fmt.Errorf("%w: manual entry from %s", ErrInvalidTransition, doc.Status)
	}

	doc.ManualPlate = plateText
	match, found := s.index.Match([]string{plateText})
	if !found {
		doc.Status = StatusNotFound
		doc.Message = fmt.Sprintf("no fleet vehicle matches plate %s", plateText)
		return StatusNotFound, nil
	}

	vehicle := match.Vehicle
	doc.Status = StatusMatched
	doc.Vehicle = &vehicle
	doc.ExtractedPlate = match.Plate
	doc.NormalizedPlate = match.Normalized
	doc.Message = ""

	s.log.Info().
		Str("document_id", id.String()).
		Str("plate", plateText).
		Str("vehicle_id", vehicle.ID).
		Msg("document matched via manual plate entry")
	return StatusMatched, nil
}

// CommitMatched persists each matched document: the image is stored, a
// document record is created, and the extracted fields are merged into the
// fleet record. Every document is its own unit of work — a persistence
// failure marks that document error and leaves the rest of the batch alone.
func (s *Session) CommitMatched(ctx context.Context, ids []uuid.UUID) []CommitResult {
	results := make([]CommitResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, s.commitOne(ctx, id))
	}
	return results
}

func (s *Session) commitOne(ctx context.Context, id uuid.UUID) CommitResult {
	s.mu.Lock()
	doc, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return CommitResult{DocumentID: id, Status: StatusError, Message: ErrUnknownDocument.Error()}
	}
	if doc.Status != StatusMatched || doc.Vehicle == nil {
		status := doc.Status
		s.mu.Unlock()
		return CommitResult{
			DocumentID: id,
			Status:     status,
			Message:    fmt.Sprintf("%v: commit from %s", ErrInvalidTransition, status),
		}
	}
	image := doc.Image
	vehicleID := doc.Vehicle.ID
	data := doc.Data
	s.mu.Unlock()

	log := logger.WithDocument("workflow", id.String())

	path, err := s.images.StoreImage(image.Name, image.Data)
	if err != nil {
		log.Error().Err(err).Msg("image store failed")
		return s.failCommit(id, fmt.Sprintf("image store failed: %v", err))
	}
	if err := s.records.CreateDocumentRecord(ctx, vehicleID, path, DocumentType); err != nil {
		log.Error().Err(err).Msg("document record creation failed")
		return s.failCommit(id, fmt.Sprintf("document record creation failed: %v", err))
	}

	changed, err := s.merger.Merge(ctx, vehicleID, data)
	if err != nil {
		log.Error().Err(err).Msg("record merge failed")
		return s.failCommit(id, fmt.Sprintf("record merge failed: %v", err))
	}

	s.mu.Lock()
	if doc, ok := s.docs[id]; ok {
		doc.Status = StatusUploaded
		doc.Message = ""
	}
	s.mu.Unlock()

	log.Info().
		Str("vehicle_id", vehicleID).
		Bool("fields_changed", changed).
		Msg("document committed")
	return CommitResult{DocumentID: id, Status: StatusUploaded, FieldsChanged: changed}
}

func (s *Session) failCommit(id uuid.UUID, message string) CommitResult {
	s.mu.Lock()
	if doc, ok := s.docs[id]; ok {
		doc.Status = StatusError
		doc.Message = message
	}
	s.mu.Unlock()
	return CommitResult{DocumentID: id, Status: StatusError, Message: message}
}

// RemoveDocument discards a document and releases its transient image data.
// An in-flight recognition result for it is discarded on arrival.
func (s *Session) RemoveDocument(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return
	}
	doc.Image.Data = nil
	delete(s.docs, id)
	for i, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Info().Str("document_id", id.String()).Msg("document removed")
}

// ClearAll discards every document in the session.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs {
		doc.Image.Data = nil
	}
	s.docs = make(map[uuid.UUID]*UploadedDocument)
	s.order = nil
	s.log.Info().Msg("session cleared")
}
