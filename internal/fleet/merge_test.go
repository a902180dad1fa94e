package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"fleetdocs/pkg/models"
)

type fakeUpdater struct {
	calls  int
	lastID string
	fields bson.M
	err    error
}

func (f *fakeUpdater) UpdateVehicle(_ context.Context, id string, fields bson.M) error {
	f.calls++
	f.lastID = id
	f.fields = fields
	return f.err
}

func TestBuildSparseUpdateKeepsOnlyPopulatedFields(t *testing.T) {
	data := &models.ExtractedVehicleData{
		VIN:  "ABCDE1234567890",
		Make: "Toyota",
		Year: 2019,
	}
	fields := BuildSparseUpdate(data)

	assert.Equal(t, bson.M{
		"vin":  "ABCDE1234567890",
		"make": "Toyota",
		"year": 2019,
	}, fields)

	// Empty source fields never appear in the update: merge is additive,
	// a populated target field can never be blanked.
	assert.NotContains(t, fields, "color")
	assert.NotContains(t, fields, "model")
	assert.NotContains(t, fields, "seating_capacity")
}

func TestBuildSparseUpdateEmptyData(t *testing.T) {
	assert.Empty(t, BuildSparseUpdate(&models.ExtractedVehicleData{}))
	assert.Empty(t, BuildSparseUpdate(nil))
}

func TestBuildSparseUpdateExcludesPlate(t *testing.T) {
	fields := BuildSparseUpdate(&models.ExtractedVehicleData{
		PlateNumber:     "008205",
		PlateNormalized: "8205",
	})
	assert.Empty(t, fields)
}

func TestMergeSkipsEmptyUpdate(t *testing.T) {
	// The matched vehicle has color already set; the extracted data has no
	// color (or anything else). The merge must not touch the record.
	updater := &fakeUpdater{}
	m := NewMerger(updater)

	changed, err := m.Merge(context.Background(), "v1", &models.ExtractedVehicleData{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, updater.calls, "empty sparse update must skip the write entirely")
}

func TestMergeWritesSparseFields(t *testing.T) {
	updater := &fakeUpdater{}
	m := NewMerger(updater)

	expiry := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	changed, err := m.Merge(context.Background(), "v1", &models.ExtractedVehicleData{
		Color:              "أبيض",
		RegistrationExpiry: expiry,
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, updater.calls)
	assert.Equal(t, "v1", updater.lastID)
	assert.Equal(t, bson.M{"color": "أبيض", "registration_expiry": expiry}, updater.fields)
}

func TestMergePropagatesWriteError(t *testing.T) {
	updater := &fakeUpdater{err: errors.New("write failed")}
	m := NewMerger(updater)

	changed, err := m.Merge(context.Background(), "v1", &models.ExtractedVehicleData{Make: "Kia"})
	assert.Error(t, err)
	assert.False(t, changed)
}
