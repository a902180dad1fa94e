package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"fleetdocs/internal/logger"
)

const documentsCollection = "vehicle_documents"

// DocumentRecord links a stored document image to the fleet vehicle it was
// matched against.
type DocumentRecord struct {
	VehicleID string    `bson:"vehicle_id" json:"vehicle_id"`
	ImagePath string    `bson:"image_path" json:"image_path"`
	Type      string    `bson:"type" json:"type"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Records persists document records in MongoDB.
type Records struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

// NewRecords wraps the vehicle_documents collection of the given database.
func NewRecords(db *mongo.Database) *Records {
	return &Records{
		coll: db.Collection(documentsCollection),
		log:  logger.WithComponent("document-records"),
	}
}

// CreateDocumentRecord stores one record for a committed document.
func (r *Records) CreateDocumentRecord(ctx context.Context, vehicleID, imagePath, docType string) error {
	record := DocumentRecord{
		VehicleID: vehicleID,
		ImagePath: imagePath,
		Type:      docType,
		CreatedAt: time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("create document record: %w", err)
	}

	r.log.Info().
		Str("vehicle_id", vehicleID).
		Str("image_path", imagePath).
		Str("type", docType).
		Msg("document record created")
	return nil
}
