package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EstateHub/config"
	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store groups the MongoDB-backed repositories over one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Listings      map[models.Kind]*ListingRepository
	Users         *UserRepository
	Favorites     *FavoriteRepository
	Payments      *PaymentRepository
	Announcements *ContentRepository[models.Announcement]
	Teams         *ContentRepository[models.TeamMember]
	Inspections   *ContentRepository[models.Inspection]
}

// Connect dials MongoDB, pings the primary and wires every repository.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	names := cfg.Collections
	return &Store{
		client: client,
		db:     db,
		Listings: map[models.Kind]*ListingRepository{
			models.KindLand:      NewListingRepository(db.Collection(names.Lands), models.KindLand),
			models.KindHouse:     NewListingRepository(db.Collection(names.Houses), models.KindHouse),
			models.KindApartment: NewListingRepository(db.Collection(names.Apartments), models.KindApartment),
		},
		Users:         NewUserRepository(db.Collection(names.Users)),
		Favorites:     NewFavoriteRepository(db.Collection(names.Favorites)),
		Payments:      NewPaymentRepository(db.Collection(names.Payments)),
		Announcements: NewContentRepository[models.Announcement](db.Collection(names.Announcements)),
		Teams:         NewContentRepository[models.TeamMember](db.Collection(names.Teams)),
		Inspections:   NewContentRepository[models.Inspection](db.Collection(names.Inspections)),
	}, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.Users.collection, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.Favorites.collection, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "propertyType", Value: 1}, {Key: "propertyId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.Favorites.collection, mongo.IndexModel{
			Keys: bson.D{{Key: "propertyType", Value: 1}, {Key: "propertyId", Value: 1}},
		}},
		{s.Payments.collection, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "paymentDate", Value: -1}},
		}},
		{s.Payments.collection, mongo.IndexModel{
			Keys: bson.D{{Key: "status", Value: 1}},
		}},
	}
	for _, repo := range s.Listings {
		specs = append(specs, struct {
			coll  *mongo.Collection
			model mongo.IndexModel
		}{repo.collection, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}}})
	}

	for _, idx := range specs {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func pageOptions(page, limit int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return options.Find().SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
}
