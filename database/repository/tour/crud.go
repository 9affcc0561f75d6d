package tourRepo

import (
	"context"
	"errors"
	"sync"

	"vltava/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTourNotFound is returned for unknown tour ids.
var ErrTourNotFound = errors.New("tour not found")

// Tours never change after seeding, so reads go through a process-local cache.
var tourCache sync.Map

// GetByID returns a tour by its slug id.
func (r *mongoTourRepo) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	if cached, ok := tourCache.Load(id); ok {
		tour := cached.(models.Tour)
		return &tour, nil
	}

	var tour models.Tour
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	tourCache.Store(id, tour)
	return &tour, nil
}

// GetAll returns the full tour catalogue.
func (r *mongoTourRepo) GetAll(ctx context.Context) ([]models.Tour, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tours []models.Tour
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	for _, t := range tours {
		tourCache.Store(t.ID, t)
	}
	return tours, nil
}
