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

type ListingRepository struct {
	collection *mongo.Collection
	kind       models.Kind
}

func NewListingRepository(collection *mongo.Collection, kind models.Kind) *ListingRepository {
	return &ListingRepository{collection: collection, kind: kind}
}

func (r *ListingRepository) Kind() models.Kind { return r.kind }

func (r *ListingRepository) List(ctx context.Context, q ListingQuery) ([]models.Listing, int64, error) {
	filter := q.Filter()
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(q.Sort())
	if q.Limit > 0 {
		opts.SetSkip(q.Skip()).SetLimit(int64(q.Limit))
	}
	listings, err := findAll[models.Listing](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *ListingRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (r *ListingRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Listing, error) {
	if len(ids) == 0 {
		return []models.Listing{}, nil
	}
	return findAll[models.Listing](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *ListingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now
	listing.Kind = r.kind
	listing.Normalize()
	_, err := r.collection.InsertOne(ctx, listing)
	return err
}

func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now().UTC()
	listing.Kind = r.kind
	listing.Normalize()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": listing.ID}, listing)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Restore re-inserts a previously deleted listing with its original id.
func (r *ListingRepository) Restore(ctx context.Context, listing *models.Listing) error {
	_, err := r.collection.InsertOne(ctx, listing)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *ListingRepository) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.Status `bson:"_id"`
		Count  int64         `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[models.Status]int64, len(r.kind.Statuses()))
	for _, s := range r.kind.Statuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
