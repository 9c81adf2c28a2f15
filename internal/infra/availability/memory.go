package availability

import (
	"context"
	"sync"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
)

// MemorySource is a map-backed availability source for tests and local
// wiring. Setting Err makes every lookup fail, which exercises the
// recoverable-error paths of the callers.
type MemorySource struct {
	mu    sync.RWMutex
	days  map[string][]string
	hours map[string][]string
	Err   error
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		days:  make(map[string][]string),
		hours: make(map[string][]string),
	}
}

func (s *MemorySource) SetDays(productID catalog.ProductID, charging booking.ChargingType, days []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[string(productID)+":"+string(charging)] = append([]string(nil), days...)
}

func (s *MemorySource) SetHours(productID catalog.ProductID, date string, hours []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hours[string(productID)+":"+date] = append([]string(nil), hours...)
}

func (s *MemorySource) AvailableDays(ctx context.Context, productID catalog.ProductID, charging booking.ChargingType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.days[string(productID)+":"+string(charging)]...), nil
}

func (s *MemorySource) AvailableHours(ctx context.Context, productID catalog.ProductID, date string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.hours[string(productID)+":"+date]...), nil
}

var _ Source = (*MemorySource)(nil)
