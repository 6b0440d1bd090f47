package repository

import (
	"context"
	"time"

	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStore persists one kind of listing.
type ListingStore interface {
	Kind() models.Kind
	List(ctx context.Context, q ListingQuery) ([]models.Listing, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Listing, error)
	Insert(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Restore(ctx context.Context, listing *models.Listing) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	AddPurchased(ctx context.Context, userID primitive.ObjectID, kind models.Kind, listingID primitive.ObjectID) error
	SetFavoriteLand(ctx context.Context, userID, landID primitive.ObjectID, favorite bool) error
	PullListing(ctx context.Context, kind models.Kind, listingID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Restore(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, favorite *models.Favorite) error
	Remove(ctx context.Context, userID primitive.ObjectID, propertyType string, propertyID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, propertyType string) ([]models.Favorite, error)
	ListByProperty(ctx context.Context, propertyType string, propertyID primitive.ObjectID) ([]models.Favorite, error)
	DeleteByProperty(ctx context.Context, propertyType string, propertyID primitive.ObjectID) (int64, error)
	ListByUserAll(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Restore(ctx context.Context, favorites []models.Favorite) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Payment, int64, error)
	// Transition moves a payment from one status to another, failing with
	// models.ErrPaymentFinalized when it is no longer in from.
	Transition(ctx context.Context, id primitive.ObjectID, from, to models.PaymentStatus, at time.Time) (*models.Payment, error)
	TotalRevenue(ctx context.Context) (float64, error)
	MonthlyRevenue(ctx context.Context, since time.Time) ([]models.MonthlyRevenue, error)
	Recent(ctx context.Context, n int) ([]models.Payment, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error)
}

// ContentStore persists one admin dashboard section.
type ContentStore[T any] interface {
	List(ctx context.Context, page, limit int) ([]T, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Create(ctx context.Context, doc *T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
