package draftRepo

import (
	"context"

	"vltava/config"
	"vltava/database"
	"vltava/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DraftRepository stores not-yet-acknowledged booking attempts. Mutations are
// per-record inserts and deletes; the collection is never rewritten as a
// whole, so the interactive flow and the replay worker can interleave safely.
type DraftRepository interface {
	Create(ctx context.Context, draft models.Draft) error
	GetByID(ctx context.Context, id string) (*models.Draft, error)
	GetAll(ctx context.Context) ([]models.Draft, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoDraftRepo struct {
	coll *mongo.Collection
}

// NewMongoDraftRepo returns a new DraftRepository instance using MongoDB.
func NewMongoDraftRepo() DraftRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoDraftRepo{
		coll: db.Collection("booking_drafts"),
	}
}
