package inventory

import (
	"context"
	"sync"
)

type MemStore struct {
	mu  sync.RWMutex
	doc *Document
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreWith starts from d instead of the default seed.
func NewMemStoreWith(d Document) *MemStore {
	c := d.Clone()
	return &MemStore{doc: &c}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		d := DefaultDocument()
		s.doc = &d
	}
	return s.doc.Clone(), nil
}

func (s *MemStore) Save(ctx context.Context, d Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := d.Clone()
	s.doc = &c
	return nil
}
