package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentService runs the Pending -> Completed/Failed payment lifecycle.
type PaymentService struct {
	listings map[models.Kind]repository.ListingStore
	payments repository.PaymentStore
	users    repository.UserStore
	now      func() time.Time
	onChange func()
}

// NewPaymentService builds the service. onChange, when set, runs after a
// payment reaches a terminal status.
func NewPaymentService(listings map[models.Kind]repository.ListingStore, payments repository.PaymentStore, users repository.UserStore, onChange func()) *PaymentService {
	return &PaymentService{
		listings: listings,
		payments: payments,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
		onChange: onChange,
	}
}

// resolveReference accepts either landId or propertyType plus propertyId.
func resolveReference(req models.CreatePaymentRequest) (models.Kind, primitive.ObjectID, error) {
	if req.LandID != "" {
		id, err := primitive.ObjectIDFromHex(req.LandID)
		if err != nil {
			return "", primitive.NilObjectID, fmt.Errorf("%w: landId is not a valid id", models.ErrInvalidReference)
		}
		return models.KindLand, id, nil
	}
	if strings.TrimSpace(req.PropertyType) == "" || req.PropertyID == "" {
		return "", primitive.NilObjectID, fmt.Errorf("%w: landId or propertyType and propertyId are required", models.ErrInvalidReference)
	}
	kind, err := models.ParseKind(req.PropertyType)
	if err != nil {
		return "", primitive.NilObjectID, fmt.Errorf("%w: %v", models.ErrInvalidReference, err)
	}
	id, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return "", primitive.NilObjectID, fmt.Errorf("%w: propertyId is not a valid id", models.ErrInvalidReference)
	}
	return kind, id, nil
}

// Initiate records a Pending payment by userID for an existing listing.
func (s *PaymentService) Initiate(ctx context.Context, userID primitive.ObjectID, req models.CreatePaymentRequest) (*models.Payment, error) {
	kind, propertyID, err := resolveReference(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.listings[kind].Get(ctx, propertyID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:       userID,
		Amount:       req.Amount,
		Method:       req.Method,
		Status:       models.PaymentPending,
		PropertyType: kind.DisplayName(),
		PropertyID:   propertyID,
		Reference:    "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
		PaymentDate:  s.now(),
	}
	if kind == models.KindLand {
		landID := propertyID
		payment.LandID = &landID
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	logging.FromContext(ctx).Info("payment initiated", logging.Fields{
		"payment_id": payment.ID.Hex(), "reference": payment.Reference, "amount": payment.Amount,
	})
	return payment, nil
}

func (s *PaymentService) authorize(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && payment.UserID != actor.ID {
		return nil, models.ErrForbidden
	}
	return payment, nil
}

// Complete marks the payment Completed and adds the listing to the buyer's
// purchased list. If that update fails the payment goes back to Pending.
func (s *PaymentService) Complete(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParseKind(payment.PropertyType)
	if err != nil {
		return nil, err
	}

	completed, err := s.payments.Transition(ctx, id, models.PaymentPending, models.PaymentCompleted, s.now())
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx).WithFields(logging.Fields{"payment_id": id.Hex()})
	if err := s.users.AddPurchased(ctx, payment.UserID, kind, payment.PropertyID); err != nil {
		log.Warn("recording purchase failed, reverting payment", logging.Fields{"error": err.Error()})
		if _, rerr := s.payments.Transition(ctx, id, models.PaymentCompleted, models.PaymentPending, s.now()); rerr != nil {
			log.Error("revert payment failed", rerr, nil)
			return nil, errors.Join(fmt.Errorf("record purchase: %w", err), rerr)
		}
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	log.Info("payment completed", logging.Fields{"amount": completed.Amount})
	s.changed()
	return completed, nil
}

// Fail marks a Pending payment Failed.
func (s *PaymentService) Fail(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Payment, error) {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	failed, err := s.payments.Transition(ctx, id, models.PaymentPending, models.PaymentFailed, s.now())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("payment failed", logging.Fields{"payment_id": id.Hex()})
	s.changed()
	return failed, nil
}

func (s *PaymentService) History(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Payment, int64, error) {
	return s.payments.ListByUser(ctx, userID, page, limit)
}

func (s *PaymentService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
