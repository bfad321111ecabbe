package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/snackbar/internal/pos/ports"
)

// Store keeps the last saved document in memory. Useful for local development and tests.
type Store struct {
	mu    sync.RWMutex
	doc   *ports.Document
	saves int
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// NewStoreWithDocument constructs a store that already holds doc.
func NewStoreWithDocument(doc ports.Document) *Store {
	return &Store{doc: &doc}
}

// Load returns the last saved document.
func (s *Store) Load(_ context.Context) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return ports.Document{}, ports.ErrNoDocument
	}
	return *s.doc, nil
}

// Save replaces the stored document.
func (s *Store) Save(_ context.Context, doc ports.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &doc
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
