// Package history keeps the capped, most-recent-first list of scanned products.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/franckalain/allergenscan/internal/database"
	"github.com/franckalain/allergenscan/internal/models"
)

const (
	// SlotName is the persistence slot holding the serialized history
	SlotName = "allergen_scanner:scan_history"
	// MaxItems is the number of products kept
	MaxItems = 50
)

// Store persists scan history in a single slot.
// Reads fail open to an empty history; writes fail silently after logging.
type Store struct {
	slots database.Slots

	// serialises the read-modify-write in Add
	mu sync.Mutex
}

// NewStore creates a history store on top of slots
func NewStore(slots database.Slots) *Store {
	return &Store{slots: slots}
}

// Get returns the history, most recent first. It never fails; missing or
// unreadable data yields an empty slice.
func (s *Store) Get(ctx context.Context) []models.Product {
	items, err := s.load(ctx)
	if err != nil {
		log.Printf("Failed to get scan history: %v", err)
		return []models.Product{}
	}
	return items
}

// Add records p at the front of the history, replacing an earlier entry
// with the same barcode and dropping entries beyond MaxItems
func (s *Store) Add(ctx context.Context, p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		log.Printf("Failed to read scan history, starting fresh: %v", err)
		current = nil
	}

	next := make([]models.Product, 0, len(current)+1)
	next = append(next, p.Clone())
	for _, item := range current {
		if item.Barcode != p.Barcode {
			next = append(next, item)
		}
	}
	if len(next) > MaxItems {
		next = next[:MaxItems]
	}

	data, err := json.Marshal(next)
	if err != nil {
		log.Printf("Failed to add to scan history: %v", err)
		return
	}
	if err := s.slots.Set(ctx, SlotName, data); err != nil {
		log.Printf("Failed to add to scan history: %v", err)
	}
}

// Clear removes the persisted history
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.Remove(ctx, SlotName); err != nil {
		log.Printf("Failed to clear scan history: %v", err)
	}
}

func (s *Store) load(ctx context.Context) ([]models.Product, error) {
	data, err := s.slots.Get(ctx, SlotName)
	if errors.Is(err, database.ErrSlotNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}
