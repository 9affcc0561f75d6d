package tourRepo

import (
	"context"
	"time"

	"vltava/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultCatalogue is the launch set of tours.
func DefaultCatalogue() []models.Tour {
	return []models.Tour{
		{
			ID:            "prague-castle",
			Name:          "Prague Castle & Lesser Town",
			OperatingMask: models.MaskFor(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday),
			MaxGroupSize:  8,
			BasePrice:     45,
			Currency:      "EUR",
		},
		{
			ID:            "old-town",
			Name:          "Old Town & Jewish Quarter",
			OperatingMask: models.EveryDay,
			MaxGroupSize:  20,
			BasePrice:     30,
			Currency:      "EUR",
		},
		{
			ID:            "charles-bridge-night",
			Name:          "Charles Bridge by Night",
			OperatingMask: models.MaskFor(time.Friday, time.Saturday, time.Sunday),
			MaxGroupSize:  12,
			BasePrice:     35,
			Currency:      "EUR",
		},
	}
}

// Seed inserts the default catalogue if the collection is empty.
func (r *mongoTourRepo) Seed(ctx context.Context) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(DefaultCatalogue()))
	for _, t := range DefaultCatalogue() {
		docs = append(docs, t)
	}
	_, err = r.coll.InsertMany(ctx, docs)
	return err
}
