package repository

import (
	"context"
	"errors"
	"time"

	"EstateHub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(collection *mongo.Collection) *PaymentRepository {
	return &PaymentRepository{collection: collection}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	_, err := r.collection.InsertOne(ctx, payment)
	return err
}

func (r *PaymentRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Payment, int64, error) {
	filter := bson.M{"userId": userID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "paymentDate", Value: -1}, {Key: "_id", Value: -1}})
	payments, err := findAll[models.Payment](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) Transition(ctx context.Context, id primitive.ObjectID, from, to models.PaymentStatus, at time.Time) (*models.Payment, error) {
	set := bson.M{"status": to}
	if to == models.PaymentCompleted {
		set["completedAt"] = at
	}

	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&payment)
	if err == nil {
		return &payment, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Either the payment is gone or it already left the from state.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, models.ErrPaymentFinalized
}

func (r *PaymentRepository) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// MonthlyRevenue buckets completed payments made at or after since by calendar month (UTC).
func (r *PaymentRepository) MonthlyRevenue(ctx context.Context, since time.Time) ([]models.MonthlyRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentCompleted, "paymentDate": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"year": bson.M{"$year": "$paymentDate"}, "month": bson.M{"$month": "$paymentDate"}},
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "total": 1, "count": 1}}},
		{{Key: "$sort", Value: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.MonthlyRevenue{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) Recent(ctx context.Context, n int) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paymentDate", Value: -1}}).SetLimit(int64(n))
	return findAll[models.Payment](ctx, r.collection, bson.M{}, opts)
}

func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *PaymentRepository) CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}
