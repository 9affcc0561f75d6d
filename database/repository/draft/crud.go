package draftRepo

import (
	"context"
	"errors"
	"time"

	"vltava/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDraftNotFound is returned when a draft id has no matching record,
// typically because a concurrent replay already acknowledged it.
var ErrDraftNotFound = errors.New("draft not found")

// Create inserts a new draft. The id is generated here if the caller did not
// supply one; it doubles as the idempotency key for resubmissions.
func (r *mongoDraftRepo) Create(ctx context.Context, draft models.Draft) error {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, draft)
	return err
}

// GetByID returns a single draft by its id.
func (r *mongoDraftRepo) GetByID(ctx context.Context, id string) (*models.Draft, error) {
	var draft models.Draft
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&draft)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// GetAll returns every pending draft, oldest first.
func (r *mongoDraftRepo) GetAll(ctx context.Context) ([]models.Draft, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drafts []models.Draft
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// DeleteByID removes exactly one draft by id.
func (r *mongoDraftRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrDraftNotFound
	}
	return nil
}
