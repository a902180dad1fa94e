package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleetdocs/internal/logger"
	"fleetdocs/pkg/models"
)

const vehiclesCollection = "vehicles"

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return client, nil
}

// Registry is the MongoDB-backed fleet registry.
type Registry struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

// NewRegistry wraps the vehicles collection of the given database.
func NewRegistry(db *mongo.Database) *Registry {
	return &Registry{
		coll: db.Collection(vehiclesCollection),
		log:  logger.WithComponent("fleet-registry"),
	}
}

// ListVehicles returns every registered vehicle. The caller builds the plate
// index from this list once per matching session.
func (r *Registry) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return vehicles, nil
}

// UpdateVehicle applies a sparse field update to one vehicle record.
func (r *Registry) UpdateVehicle(ctx context.Context, id string, fields bson.M) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update vehicle %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrVehicleNotFound
	}

	r.log.Info().
		Str("vehicle_id", id).
		Int("fields", len(fields)-1).
		Msg("vehicle record updated")
	return nil
}

// InsertVehicle adds a vehicle to the registry. Used by seeding and tests.
func (r *Registry) InsertVehicle(ctx context.Context, v models.Vehicle) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.UpdatedAt = v.CreatedAt
	_, err := r.coll.InsertOne(ctx, v)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// FindVehicleByID loads one vehicle record.
func (r *Registry) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}
