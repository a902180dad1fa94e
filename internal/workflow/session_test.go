package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdocs/internal/extract"
	"fleetdocs/internal/fleet"
	"fleetdocs/internal/ocr"
	"fleetdocs/pkg/models"
)

type stubRecognizer struct {
	fn func(ctx context.Context, image []byte) (*ocr.RecognitionResult, error)
}

func (s *stubRecognizer) Recognize(ctx context.Context, image []byte) (*ocr.RecognitionResult, error) {
	return s.fn(ctx, image)
}

type fakeImages struct {
	err   error
	calls int
}

func (f *fakeImages) StoreImage(name string, _ []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "documents/" + name, nil
}

type fakeRecords struct {
	err       error
	calls     int
	vehicleID string
}

func (f *fakeRecords) CreateDocumentRecord(_ context.Context, vehicleID, _, _ string) error {
	f.calls++
	f.vehicleID = vehicleID
	return f.err
}

type fakeMerger struct {
	changed bool
	err     error
	calls   int
}

func (f *fakeMerger) Merge(_ context.Context, _ string, _ *models.ExtractedVehicleData) (bool, error) {
	f.calls++
	return f.changed, f.err
}

func testIndex() *fleet.PlateIndex {
	return fleet.BuildIndex([]models.Vehicle{
		{ID: "v1", Plate: "08205", Make: "Toyota", Model: "Camry"},
		{ID: "v2", Plate: "1234", Make: "Nissan"},
	})
}

func textRecognizer(text, provider string) *stubRecognizer {
	return &stubRecognizer{fn: func(_ context.Context, _ []byte) (*ocr.RecognitionResult, error) {
		return &ocr.RecognitionResult{Text: text, Provider: provider}, nil
	}}
}

func newTestSession(rec Recognizer, images *fakeImages, records *fakeRecords, merger *fakeMerger) *Session {
	return NewSession(SessionConfig{
		Recognizer: rec,
		Extractor: extract.New(extract.Options{
			Now: func() time.Time { return time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC) },
		}),
		Index:   testIndex(),
		Images:  images,
		Records: records,
		Merger:  merger,
		Workers: 2,
	})
}

func TestRecognitionMatchesAndCommits(t *testing.T) {
	images := &fakeImages{}
	records := &fakeRecords{}
	merger := &fakeMerger{changed: true}
	s := newTestSession(textRecognizer("Vehicle No. 008205 TOYOTA Year: 2019", "primary"), images, records, merger)

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	require.Len(t, ids, 1)

	updates := s.RunRecognition(context.Background(), ids)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusMatched, updates[0].Status)
	assert.Equal(t, "008205", updates[0].Plate)
	assert.Equal(t, "primary", updates[0].Provider)

	docs := s.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, StatusMatched, docs[0].Status)
	require.NotNil(t, docs[0].Vehicle)
	assert.Equal(t, "v1", docs[0].Vehicle.ID)
	assert.Equal(t, "008205", docs[0].ExtractedPlate)
	assert.Equal(t, "8205", docs[0].NormalizedPlate)

	results := s.CommitMatched(context.Background(), ids)
	require.Len(t, results, 1)
	assert.Equal(t, StatusUploaded, results[0].Status)
	assert.True(t, results[0].FieldsChanged)
	assert.Equal(t, 1, images.calls)
	assert.Equal(t, 1, records.calls)
	assert.Equal(t, "v1", records.vehicleID)
	assert.Equal(t, 1, merger.calls)
}

func TestRecognitionNoFleetMatch(t *testing.T) {
	s := newTestSession(textRecognizer("Vehicle No. 99999", "primary"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	updates := s.RunRecognition(context.Background(), ids)

	require.Len(t, updates, 1)
	assert.Equal(t, StatusNotFound, updates[0].Status)
	assert.Contains(t, updates[0].Message, "99999")
}

func TestRecognitionNoPlateCandidate(t *testing.T) {
	s := newTestSession(textRecognizer("no digits here at all", "fallback"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	updates := s.RunRecognition(context.Background(), ids)

	require.Len(t, updates, 1)
	assert.Equal(t, StatusNotFound, updates[0].Status)
	assert.Contains(t, updates[0].Message, "manually")
	assert.Equal(t, "fallback", updates[0].Provider)
}

func TestRecognitionErrorState(t *testing.T) {
	rec := &stubRecognizer{fn: func(_ context.Context, _ []byte) (*ocr.RecognitionResult, error) {
		return nil, errors.New("both providers down")
	}}
	s := newTestSession(rec, &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	updates := s.RunRecognition(context.Background(), ids)

	require.Len(t, updates, 1)
	assert.Equal(t, StatusError, updates[0].Status)
	assert.Contains(t, updates[0].Message, "recognition failed")
}

func TestBatchFailuresAreIndependent(t *testing.T) {
	rec := &stubRecognizer{fn: func(_ context.Context, image []byte) (*ocr.RecognitionResult, error) {
		if string(image) == "bad" {
			return nil, errors.New("unreadable")
		}
		return &ocr.RecognitionResult{Text: "Vehicle No. 1234", Provider: "primary"}, nil
	}}
	s := newTestSession(rec, &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{
		{Name: "bad.jpg", Data: []byte("bad")},
		{Name: "good.jpg", Data: []byte("good")},
	})
	updates := s.RunRecognition(context.Background(), ids)

	require.Len(t, updates, 2)
	byID := map[uuid.UUID]StatusUpdate{}
	for _, u := range updates {
		byID[u.DocumentID] = u
	}
	assert.Equal(t, StatusError, byID[ids[0]].Status)
	assert.Equal(t, StatusMatched, byID[ids[1]].Status)
}

func TestManualPlateEntryResolvesNotFound(t *testing.T) {
	s := newTestSession(textRecognizer("Vehicle No. 99999", "primary"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	s.RunRecognition(context.Background(), ids)

	// Unknown plate keeps the document in not_found.
	status, err := s.EnterManualPlate(ids[0], "55555")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)

	// A known plate, entered with a leading zero difference, matches via
	// the normalized tier.
	status, err = s.EnterManualPlate(ids[0], "8205")
	require.NoError(t, err)
	assert.Equal(t, StatusMatched, status)

	docs := s.Documents()
	require.NotNil(t, docs[0].Vehicle)
	assert.Equal(t, "v1", docs[0].Vehicle.ID)
	assert.Equal(t, "8205", docs[0].ManualPlate)
}

func TestManualPlateEntryInvalidFromPending(t *testing.T) {
	s := newTestSession(textRecognizer("x", "primary"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	_, err := s.EnterManualPlate(ids[0], "1234")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.EnterManualPlate(uuid.New(), "1234")
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestCommitRequiresMatchedStatus(t *testing.T) {
	s := newTestSession(textRecognizer("x", "primary"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids := s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	results := s.CommitMatched(context.Background(), ids)

	require.Len(t, results, 1)
	assert.Equal(t, StatusPending, results[0].Status)
	assert.Contains(t, results[0].Message, "invalid document status transition")
}

func TestCommitPersistenceFailureIsPerDocument(t *testing.T) {
	records := &fakeRecords{err: errors.New("db down")}
	s := newTestSession(textRecognizer("Vehicle No. 008205", "primary"), &fakeImages{}, records, &fakeMerger{})

	ids := s.SubmitImages([]Image{
		{Name: "a.jpg", Data: []byte("a")},
		{Name: "b.jpg", Data: []byte("b")},
	})
	s.RunRecognition(context.Background(), ids)

	// First commit fails on the record write; the second document is its
	// own unit of work and keeps its matched state.
	results := s.CommitMatched(context.Background(), ids[:1])
	require.Len(t, results, 1)
	assert.Equal(t, StatusError, results[0].Status)

	docs := s.Documents()
	assert.Equal(t, StatusError, docs[0].Status)
	assert.Equal(t, StatusMatched, docs[1].Status)
}

func TestRemovedDocumentResultDiscarded(t *testing.T) {
	var s *Session
	var ids []uuid.UUID

	rec := &stubRecognizer{fn: func(_ context.Context, _ []byte) (*ocr.RecognitionResult, error) {
		// Simulate the operator removing the document while its
		// recognition is in flight.
		s.RemoveDocument(ids[0])
		return &ocr.RecognitionResult{Text: "Vehicle No. 008205", Provider: "primary"}, nil
	}}
	s = newTestSession(rec, &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	ids = s.SubmitImages([]Image{{Name: "card.jpg", Data: []byte("img")}})
	s.RunRecognition(context.Background(), ids)

	assert.Empty(t, s.Documents(), "result for a removed document must be discarded")
}

func TestClearAll(t *testing.T) {
	s := newTestSession(textRecognizer("x", "primary"), &fakeImages{}, &fakeRecords{}, &fakeMerger{})

	s.SubmitImages([]Image{
		{Name: "a.jpg", Data: []byte("a")},
		{Name: "b.jpg", Data: []byte("b")},
	})
	require.Len(t, s.Documents(), 2)

	s.ClearAll()
	assert.Empty(t, s.Documents())
}
