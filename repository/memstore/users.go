package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"EstateHub/models"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	faults
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{items: map[primitive.ObjectID]models.User{}}
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

func cloneUser(u models.User) *models.User {
	u.PurchasedLands = cloneIDs(u.PurchasedLands)
	u.PurchasedHouses = cloneIDs(u.PurchasedHouses)
	u.PurchasedApartments = cloneIDs(u.PurchasedApartments)
	u.FavoriteLands = cloneIDs(u.FavoriteLands)
	return &u
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pullID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	if err := s.fail("Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.items {
		if existing.Email == u.Email {
			return models.ErrEmailInUse
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.items[u.ID] = *cloneUser(*u)
	return nil
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := s.fail("GetByID"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := s.fail("GetByEmail"); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.items {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Users) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	if err := s.fail("List"); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	all := make([]models.User, 0, len(s.items))
	for _, u := range s.items {
		u.Password = ""
		all = append(all, *cloneUser(u))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})
	return window(all, page, limit), int64(len(all)), nil
}

func (s *Users) update(id primitive.ObjectID, fn func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	fn(&u)
	s.items[id] = u
	return cloneUser(u), nil
}

func (s *Users) UpdateRole(_ context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	if err := s.fail("UpdateRole"); err != nil {
		return nil, err
	}
	return s.update(id, func(u *models.User) {
		u.Role = role
		u.UpdatedAt = time.Now().UTC()
	})
}

func (s *Users) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	if err := s.fail("UpdatePassword"); err != nil {
		return err
	}
	_, err := s.update(id, func(u *models.User) {
		u.Password = hash
		u.UpdatedAt = time.Now().UTC()
	})
	return err
}

func (s *Users) AddPurchased(_ context.Context, userID primitive.ObjectID, kind models.Kind, listingID primitive.ObjectID) error {
	if err := s.fail("AddPurchased"); err != nil {
		return err
	}
	_, err := s.update(userID, func(u *models.User) {
		switch kind {
		case models.KindLand:
			u.PurchasedLands = addID(u.PurchasedLands, listingID)
		case models.KindHouse:
			u.PurchasedHouses = addID(u.PurchasedHouses, listingID)
		case models.KindApartment:
			u.PurchasedApartments = addID(u.PurchasedApartments, listingID)
		}
	})
	return err
}

func (s *Users) SetFavoriteLand(_ context.Context, userID, landID primitive.ObjectID, favorite bool) error {
	if err := s.fail("SetFavoriteLand"); err != nil {
		return err
	}
	_, err := s.update(userID, func(u *models.User) {
		if favorite {
			u.FavoriteLands = addID(u.FavoriteLands, landID)
		} else {
			u.FavoriteLands = pullID(u.FavoriteLands, landID)
		}
	})
	if err == models.ErrNotFound {
		return nil
	}
	return err
}

func (s *Users) PullListing(_ context.Context, kind models.Kind, listingID primitive.ObjectID) error {
	if err := s.fail("PullListing"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.items {
		switch kind {
		case models.KindLand:
			u.PurchasedLands = pullID(u.PurchasedLands, listingID)
			u.FavoriteLands = pullID(u.FavoriteLands, listingID)
		case models.KindHouse:
			u.PurchasedHouses = pullID(u.PurchasedHouses, listingID)
		case models.KindApartment:
			u.PurchasedApartments = pullID(u.PurchasedApartments, listingID)
		}
		s.items[id] = u
	}
	return nil
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) error {
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

func (s *Users) Restore(_ context.Context, u *models.User) error {
	if err := s.fail("Restore"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[u.ID]; !ok {
		s.items[u.ID] = *cloneUser(*u)
	}
	return nil
}

func (s *Users) Count(context.Context) (int64, error) {
	if err := s.fail("Count"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

var _ repository.UserStore = (*Users)(nil)
