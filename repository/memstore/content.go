package memstore

import (
	"context"
	"sync"

	"EstateHub/models"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content keeps documents in insertion order; List returns newest first.
type Content[T any] struct {
	mu    sync.RWMutex
	idOf  func(*T) primitive.ObjectID
	order []primitive.ObjectID
	items map[primitive.ObjectID]T
}

func NewContent[T any](idOf func(*T) primitive.ObjectID) *Content[T] {
	return &Content[T]{idOf: idOf, items: map[primitive.ObjectID]T{}}
}

func NewAnnouncements() *Content[models.Announcement] {
	return NewContent(func(d *models.Announcement) primitive.ObjectID { return d.ID })
}

func NewTeams() *Content[models.TeamMember] {
	return NewContent(func(d *models.TeamMember) primitive.ObjectID { return d.ID })
}

func NewInspections() *Content[models.Inspection] {
	return NewContent(func(d *models.Inspection) primitive.ObjectID { return d.ID })
}

func (s *Content[T]) List(_ context.Context, page, limit int) ([]T, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]T, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		all = append(all, s.items[s.order[i]])
	}
	return window(all, page, limit), int64(len(all)), nil
}

func (s *Content[T]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &doc, nil
}

func (s *Content[T]) Create(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(doc)
	s.items[id] = *doc
	s.order = append(s.order, id)
	return nil
}

func (s *Content[T]) Replace(_ context.Context, id primitive.ObjectID, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return models.ErrNotFound
	}
	s.items[id] = *doc
	return nil
}

func (s *Content[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ repository.ContentStore[models.Inspection] = (*Content[models.Inspection])(nil)
