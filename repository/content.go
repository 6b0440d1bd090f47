package repository

import (
	"context"

	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContentRepository stores one admin section (announcements, team, inspections).
// Callers stamp ids and timestamps before writing.
type ContentRepository[T any] struct {
	collection *mongo.Collection
}

func NewContentRepository[T any](collection *mongo.Collection) *ContentRepository[T] {
	return &ContentRepository[T]{collection: collection}
}

func (r *ContentRepository[T]) List(ctx context.Context, page, limit int) ([]T, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	docs, err := findAll[T](ctx, r.collection, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *ContentRepository[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (r *ContentRepository[T]) Create(ctx context.Context, doc *T) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *ContentRepository[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

var (
	_ ListingStore                      = (*ListingRepository)(nil)
	_ UserStore                         = (*UserRepository)(nil)
	_ FavoriteStore                     = (*FavoriteRepository)(nil)
	_ PaymentStore                      = (*PaymentRepository)(nil)
	_ ContentStore[models.Announcement] = (*ContentRepository[models.Announcement])(nil)
)
