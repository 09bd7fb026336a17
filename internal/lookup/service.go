// Package lookup resolves barcodes to products, recording real hits in the
// scan history and degrading to stand-in products otherwise.
package lookup

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/franckalain/allergenscan/internal/foodfacts"
	"github.com/franckalain/allergenscan/internal/models"
	"github.com/google/uuid"
)

// Outcome tags how a lookup was resolved
type Outcome string

const (
	OutcomeFound            Outcome = "found"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeTransportFailure Outcome = "transport_failure"
)

// Result is a resolved lookup. Product is always usable; Err holds the cause
// when Outcome is not OutcomeFound.
type Result struct {
	Product models.Product
	Outcome Outcome
	Err     error
}

// Fallback reports whether the product is a stand-in
func (r Result) Fallback() bool {
	return r.Outcome != OutcomeFound
}

// Recorder receives products from successful lookups
type Recorder interface {
	Add(ctx context.Context, p models.Product)
}

// Service resolves barcodes against the product database
type Service struct {
	fetcher    foodfacts.Fetcher
	normalizer *foodfacts.Normalizer
	history    Recorder

	now  func() time.Time
	pick func(n int) int
}

// Option customises a Service
type Option func(*Service)

// WithClock sets the clock used for fallback scan dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPicker sets how a fallback product is chosen from the pool.
// pick receives the pool size and returns an index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

// NewService creates a lookup service
func NewService(fetcher foodfacts.Fetcher, normalizer *foodfacts.Normalizer, history Recorder, opts ...Option) *Service {
	s := &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		history:    history,
		now:        time.Now,
		pick:       rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupByBarcode returns the product for barcode. It never fails: any
// error yields a stand-in product instead.
func (s *Service) LookupByBarcode(ctx context.Context, barcode string) models.Product {
	return s.Lookup(ctx, barcode).Product
}

// Lookup is LookupByBarcode with the resolution outcome attached
func (s *Service) Lookup(ctx context.Context, barcode string) Result {
	requestID := uuid.New().String()

	raw, err := s.fetcher.Fetch(ctx, barcode)
	if err != nil {
		outcome := OutcomeTransportFailure
		if errors.Is(err, foodfacts.ErrNotFound) {
			outcome = OutcomeNotFound
			log.Printf("[%s] Product %s not found in database, using fallback data", requestID, barcode)
		} else {
			log.Printf("[%s] Error fetching product %s: %v", requestID, barcode, err)
		}
		return Result{
			Product: fallbackProduct(s.pick(FallbackCount()), barcode, s.now()),
			Outcome: outcome,
			Err:     err,
		}
	}

	product := s.normalizer.Normalize(raw, barcode)
	s.history.Add(ctx, product)

	log.Printf("[%s] Resolved product %s: %s (%s)", requestID, barcode, product.Name, product.Brand)
	return Result{Product: product, Outcome: OutcomeFound}
}
