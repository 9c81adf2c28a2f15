package catalog

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("catalog: product not found")

type ProductID string

type Category string

const (
	CategorySpace     Category = "SPACE"
	CategoryEquipment Category = "EQUIPMENT"
	CategoryService   Category = "SERVICE"
)

// Address carries the owner-facing location fields shown alongside a booking.
type Address struct {
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
}

// Contact is the owning institution's point of contact.
type Contact struct {
	Email string
	Phone string
}

// Product is the rentable unit a booking is built against. The core treats it
// as read only; ownership and editing live with the backend.
type Product struct {
	ID                 ProductID
	Title              string
	Category           Category
	Type               string
	Images             []string
	HourlyPrice        float64
	DailyPrice         float64
	DiscountPercentage float64
	Address            Address
	Owner              Contact
}

// ChargeableByHour reports whether the product exposes a usable hourly rate.
func (p Product) ChargeableByHour() bool {
	return p.HourlyPrice > 0
}

// ChargeableByDay reports whether the product exposes a usable daily rate.
func (p Product) ChargeableByDay() bool {
	return p.DailyPrice > 0
}

type Repository interface {
	ByID(ctx context.Context, id ProductID) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
