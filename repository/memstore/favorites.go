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

type Favorites struct {
	faults
	mu    sync.RWMutex
	items []models.Favorite
}

func NewFavorites() *Favorites {
	return &Favorites{}
}

func (s *Favorites) filter(keep func(models.Favorite) bool) []models.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Favorite{}
	for _, f := range s.items {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Favorites) Add(_ context.Context, f *models.Favorite) error {
	if err := s.fail("Add"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.UserID == f.UserID && existing.PropertyType == f.PropertyType && existing.PropertyID == f.PropertyID {
			return models.ErrDuplicateFavorite
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, *f)
	return nil
}

func (s *Favorites) removeWhere(match func(models.Favorite) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	var removed int64
	for _, f := range s.items {
		if match(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.items = kept
	return removed
}

func (s *Favorites) Remove(_ context.Context, userID primitive.ObjectID, propertyType string, propertyID primitive.ObjectID) error {
	if err := s.fail("Remove"); err != nil {
		return err
	}
	n := s.removeWhere(func(f models.Favorite) bool {
		return f.UserID == userID && f.PropertyType == propertyType && f.PropertyID == propertyID
	})
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Favorites) ListByUser(_ context.Context, userID primitive.ObjectID, propertyType string) ([]models.Favorite, error) {
	if err := s.fail("ListByUser"); err != nil {
		return nil, err
	}
	out := s.filter(func(f models.Favorite) bool { return f.UserID == userID && f.PropertyType == propertyType })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Favorites) ListByUserAll(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	if err := s.fail("ListByUserAll"); err != nil {
		return nil, err
	}
	return s.filter(func(f models.Favorite) bool { return f.UserID == userID }), nil
}

func (s *Favorites) ListByProperty(_ context.Context, propertyType string, propertyID primitive.ObjectID) ([]models.Favorite, error) {
	if err := s.fail("ListByProperty"); err != nil {
		return nil, err
	}
	return s.filter(func(f models.Favorite) bool { return f.PropertyType == propertyType && f.PropertyID == propertyID }), nil
}

func (s *Favorites) DeleteByProperty(_ context.Context, propertyType string, propertyID primitive.ObjectID) (int64, error) {
	if err := s.fail("DeleteByProperty"); err != nil {
		return 0, err
	}
	return s.removeWhere(func(f models.Favorite) bool { return f.PropertyType == propertyType && f.PropertyID == propertyID }), nil
}

func (s *Favorites) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	if err := s.fail("DeleteByUser"); err != nil {
		return 0, err
	}
	return s.removeWhere(func(f models.Favorite) bool { return f.UserID == userID }), nil
}

func (s *Favorites) Restore(_ context.Context, favorites []models.Favorite) error {
	if err := s.fail("Restore"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	present := map[primitive.ObjectID]bool{}
	for _, f := range s.items {
		present[f.ID] = true
	}
	for _, f := range favorites {
		if !present[f.ID] {
			s.items = append(s.items, f)
		}
	}
	return nil
}

// All returns a copy of every stored favorite.
func (s *Favorites) All() []models.Favorite {
	return s.filter(func(models.Favorite) bool { return true })
}

var _ repository.FavoriteStore = (*Favorites)(nil)
