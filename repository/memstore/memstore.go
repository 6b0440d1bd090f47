// Package memstore holds in-memory implementations of the repository interfaces.
// They back the service and handler tests.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"EstateHub/models"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// faults lets tests make a named method fail.
type faults struct {
	mu   sync.Mutex
	errs map[string]error
}

// FailOn makes every later call to method return err. A nil err clears it.
func (f *faults) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *faults) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func window[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type Listings struct {
	faults
	mu    sync.RWMutex
	kind  models.Kind
	items map[primitive.ObjectID]models.Listing
}

func NewListings(kind models.Kind) *Listings {
	return &Listings{kind: kind, items: map[primitive.ObjectID]models.Listing{}}
}

func (s *Listings) Kind() models.Kind { return s.kind }

func (s *Listings) matches(l models.Listing, q repository.ListingQuery) bool {
	if q.AvailableOnly && l.Status != models.StatusAvailable {
		return false
	}
	if q.IDs != nil {
		found := false
		for _, id := range q.IDs {
			if id == l.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" &&
		!containsFold(l.Title, term) && !containsFold(l.Location, term) && !containsFold(l.Description, term) {
		return false
	}
	if q.MinPrice != nil && l.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && l.Price > *q.MaxPrice {
		return false
	}
	if loc := strings.TrimSpace(q.Location); loc != "" && !containsFold(l.Location, loc) {
		return false
	}
	if size := strings.TrimSpace(q.Size); size != "" && !containsFold(l.Size, size) {
		return false
	}
	return true
}

func compareListings(a, b models.Listing, field string) int {
	switch field {
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
	case "size":
		if c := strings.Compare(a.Size, b.Size); c != 0 {
			return c
		}
	case "title":
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
	case "updatedAt":
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
	default:
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func (s *Listings) List(_ context.Context, q repository.ListingQuery) ([]models.Listing, int64, error) {
	if err := s.fail("List"); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Listing{}
	for _, l := range s.items {
		if s.matches(l, q) {
			out = append(out, l)
		}
	}
	field, asc := q.SortField(), q.Ascending()
	sort.Slice(out, func(i, j int) bool {
		c := compareListings(out[i], out[j], field)
		if asc {
			return c < 0
		}
		return c > 0
	})
	total := int64(len(out))
	if q.Limit > 0 {
		out = window(out, q.Page, q.Limit)
	}
	return out, total, nil
}

func (s *Listings) Get(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	if err := s.fail("Get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &l, nil
}

func (s *Listings) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Listing, error) {
	if len(ids) == 0 {
		return []models.Listing{}, nil
	}
	out, _, err := s.List(ctx, repository.ListingQuery{IDs: ids})
	return out, err
}

func (s *Listings) Insert(_ context.Context, l *models.Listing) error {
	if err := s.fail("Insert"); err != nil {
		return err
	}
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	l.Kind = s.kind
	l.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[l.ID] = *l
	return nil
}

func (s *Listings) Update(_ context.Context, l *models.Listing) error {
	if err := s.fail("Update"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[l.ID]; !ok {
		return models.ErrNotFound
	}
	l.UpdatedAt = time.Now().UTC()
	l.Kind = s.kind
	l.Normalize()
	s.items[l.ID] = *l
	return nil
}

func (s *Listings) Delete(_ context.Context, id primitive.ObjectID) error {
	if err := s.fail("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Listings) Restore(_ context.Context, l *models.Listing) error {
	if err := s.fail("Restore"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[l.ID]; !ok {
		s.items[l.ID] = *l
	}
	return nil
}

func (s *Listings) Count(context.Context) (int64, error) {
	if err := s.fail("Count"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Listings) CountByStatus(context.Context) (map[models.Status]int64, error) {
	if err := s.fail("CountByStatus"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[models.Status]int64{}
	for _, st := range s.kind.Statuses() {
		counts[st] = 0
	}
	for _, l := range s.items {
		counts[l.Status]++
	}
	return counts, nil
}

var _ repository.ListingStore = (*Listings)(nil)
