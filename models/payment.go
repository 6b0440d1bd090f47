package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

var PaymentMethods = []string{"Bank Transfer", "Card", "Mobile Money", "Cash"}

func ValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Payment records a purchase attempt. Both LandID and the generic
// PropertyType/PropertyID pair are stored; land payments fill both.
type Payment struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Amount       float64             `bson:"amount" json:"amount"`
	Method       string              `bson:"method" json:"method"`
	Status       PaymentStatus       `bson:"status" json:"status"`
	PropertyType string              `bson:"propertyType" json:"propertyType"`
	PropertyID   primitive.ObjectID  `bson:"propertyId" json:"propertyId"`
	LandID       *primitive.ObjectID `bson:"landId,omitempty" json:"landId,omitempty"`
	Reference    string              `bson:"reference" json:"reference"`
	PaymentDate  time.Time           `bson:"paymentDate" json:"paymentDate"`
	CompletedAt  *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type CreatePaymentRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Method       string  `json:"method" validate:"required,oneof='Bank Transfer' Card 'Mobile Money' Cash"`
	LandID       string  `json:"landId"`
	PropertyType string  `json:"propertyType"`
	PropertyID   string  `json:"propertyId"`
}

// MonthlyRevenue is one bucket of the admin revenue chart.
type MonthlyRevenue struct {
	Year  int     `bson:"year" json:"year"`
	Month int     `bson:"month" json:"month"`
	Total float64 `bson:"total" json:"total"`
	Count int64   `bson:"count" json:"count"`
}
