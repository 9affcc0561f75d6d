package tourRepo

import (
	"context"

	"vltava/config"
	"vltava/database"
	"vltava/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TourRepository serves the immutable tour catalogue.
type TourRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tour, error)
	GetAll(ctx context.Context) ([]models.Tour, error)
	Seed(ctx context.Context) error
}

type mongoTourRepo struct {
	coll *mongo.Collection
}

// NewMongoTourRepo returns a new TourRepository instance using MongoDB.
func NewMongoTourRepo() TourRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoTourRepo{
		coll: db.Collection("tours"),
	}
}
