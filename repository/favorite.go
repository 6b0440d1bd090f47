package repository

import (
	"context"
	"time"

	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavoriteRepository struct {
	collection *mongo.Collection
}

func NewFavoriteRepository(collection *mongo.Collection) *FavoriteRepository {
	return &FavoriteRepository{collection: collection}
}

func (r *FavoriteRepository) Add(ctx context.Context, favorite *models.Favorite) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"userId":       favorite.UserID,
		"propertyType": favorite.PropertyType,
		"propertyId":   favorite.PropertyID,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return models.ErrDuplicateFavorite
	}

	if favorite.ID.IsZero() {
		favorite.ID = primitive.NewObjectID()
	}
	if favorite.CreatedAt.IsZero() {
		favorite.CreatedAt = time.Now().UTC()
	}
	_, err = r.collection.InsertOne(ctx, favorite)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateFavorite
	}
	return err
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID primitive.ObjectID, propertyType string, propertyID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "propertyType": propertyType, "propertyId": propertyID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, propertyType string) ([]models.Favorite, error) {
	return findAll[models.Favorite](ctx, r.collection,
		bson.M{"userId": userID, "propertyType": propertyType},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *FavoriteRepository) ListByUserAll(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	return findAll[models.Favorite](ctx, r.collection, bson.M{"userId": userID})
}

func (r *FavoriteRepository) ListByProperty(ctx context.Context, propertyType string, propertyID primitive.ObjectID) ([]models.Favorite, error) {
	return findAll[models.Favorite](ctx, r.collection, bson.M{"propertyType": propertyType, "propertyId": propertyID})
}

func (r *FavoriteRepository) DeleteByProperty(ctx context.Context, propertyType string, propertyID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"propertyType": propertyType, "propertyId": propertyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *FavoriteRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Restore re-inserts favorites removed by a failed cascade. Entries that already exist are skipped.
func (r *FavoriteRepository) Restore(ctx context.Context, favorites []models.Favorite) error {
	if len(favorites) == 0 {
		return nil
	}
	docs := make([]interface{}, len(favorites))
	for i := range favorites {
		docs[i] = favorites[i]
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
