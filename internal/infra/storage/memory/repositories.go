package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "reservaja/internal/domain/booking"
	domaincatalog "reservaja/internal/domain/catalog"
)

// BookingRepository stores canonical bookings in memory. Used by tests and
// the STORAGE_MODE=memory wiring.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking or ErrBookingNotFound.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

// ListByClient returns the client's bookings ordered by creation time.
func (r *BookingRepository) ListByClient(ctx context.Context, clientEmail string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if clientEmail == "" || b.Client.Email == clientEmail {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ProductRepository keeps catalog products in memory.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[domaincatalog.ProductID]*domaincatalog.Product
}

// NewProductRepository builds an empty repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[domaincatalog.ProductID]*domaincatalog.Product)}
}

// ByID returns a product or ErrProductNotFound.
func (r *ProductRepository) ByID(ctx context.Context, id domaincatalog.ProductID) (*domaincatalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domaincatalog.ErrProductNotFound
	}
	return p, nil
}

// Save stores/updates a product entry.
func (r *ProductRepository) Save(ctx context.Context, p *domaincatalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p
	return nil
}
