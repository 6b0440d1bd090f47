package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"EstateHub/models"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Payments struct {
	faults
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Payment
}

func NewPayments() *Payments {
	return &Payments{items: map[primitive.ObjectID]models.Payment{}}
}

func (s *Payments) newestFirst(keep func(models.Payment) bool) []models.Payment {
	s.mu.RLock()
	out := []models.Payment{}
	for _, p := range s.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (s *Payments) Create(_ context.Context, p *models.Payment) error {
	if err := s.fail("Create"); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = *p
	return nil
}

func (s *Payments) Get(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	if err := s.fail("Get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Payments) ListByUser(_ context.Context, userID primitive.ObjectID, page, limit int) ([]models.Payment, int64, error) {
	if err := s.fail("ListByUser"); err != nil {
		return nil, 0, err
	}
	all := s.newestFirst(func(p models.Payment) bool { return p.UserID == userID })
	return window(all, page, limit), int64(len(all)), nil
}

func (s *Payments) Transition(_ context.Context, id primitive.ObjectID, from, to models.PaymentStatus, at time.Time) (*models.Payment, error) {
	if err := s.fail("Transition"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Status != from {
		return nil, models.ErrPaymentFinalized
	}
	p.Status = to
	if to == models.PaymentCompleted {
		completed := at
		p.CompletedAt = &completed
	}
	s.items[id] = p
	return &p, nil
}

func (s *Payments) TotalRevenue(context.Context) (float64, error) {
	if err := s.fail("TotalRevenue"); err != nil {
		return 0, err
	}
	var total float64
	for _, p := range s.newestFirst(func(p models.Payment) bool { return p.Status == models.PaymentCompleted }) {
		total += p.Amount
	}
	return total, nil
}

func (s *Payments) MonthlyRevenue(_ context.Context, since time.Time) ([]models.MonthlyRevenue, error) {
	if err := s.fail("MonthlyRevenue"); err != nil {
		return nil, err
	}
	buckets := map[[2]int]*models.MonthlyRevenue{}
	for _, p := range s.newestFirst(func(p models.Payment) bool {
		return p.Status == models.PaymentCompleted && !p.PaymentDate.Before(since)
	}) {
		d := p.PaymentDate.UTC()
		key := [2]int{d.Year(), int(d.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &models.MonthlyRevenue{Year: key[0], Month: key[1]}
			buckets[key] = b
		}
		b.Total += p.Amount
		b.Count++
	}
	out := make([]models.MonthlyRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (s *Payments) Recent(_ context.Context, n int) ([]models.Payment, error) {
	if err := s.fail("Recent"); err != nil {
		return nil, err
	}
	all := s.newestFirst(func(models.Payment) bool { return true })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *Payments) Count(context.Context) (int64, error) {
	if err := s.fail("Count"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Payments) CountByStatus(_ context.Context, status models.PaymentStatus) (int64, error) {
	if err := s.fail("CountByStatus"); err != nil {
		return 0, err
	}
	return int64(len(s.newestFirst(func(p models.Payment) bool { return p.Status == status }))), nil
}

var _ repository.PaymentStore = (*Payments)(nil)
