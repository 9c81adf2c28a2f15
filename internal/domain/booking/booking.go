package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"reservaja/internal/domain/catalog"
	"reservaja/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// NormalizeStatus whitelists backend status strings. Anything outside the
// four known values collapses to PENDING so unrecognized states never reach
// consumers.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(raw)
	default:
		return StatusPending
	}
}

type ChargingType string

const (
	ChargingNone    ChargingType = ""
	ChargingPerHour ChargingType = "POR_HORA"
	ChargingPerDay  ChargingType = "POR_DIA"
)

// ParseChargingType accepts only the two charging models; anything else is
// treated as unset.
func ParseChargingType(raw string) ChargingType {
	switch ChargingType(raw) {
	case ChargingPerHour, ChargingPerDay:
		return ChargingType(raw)
	default:
		return ChargingNone
	}
}

// ReservationEntry is one reserved calendar date plus the hour slots booked
// on it. Hours stays empty for by-day bookings.
type ReservationEntry struct {
	Date  string
	Hours []string
}

// Client identifies who the booking is for.
type Client struct {
	Name  string
	Email string
	Phone string
}

// Booking is the canonical record shared by the creation and display paths.
// Both the reservation builder and the payload normalizer must emit exactly
// this shape; downstream payment and listing components accept nothing else.
type Booking struct {
	ID                  BookingID
	Status              Status
	ProductID           string
	ProductTitle        string
	ProductCategory     string
	ProductType         string
	ProductImages       []string
	ProductAddress      catalog.Address
	Institution         catalog.Contact
	ProductDiscount     float64
	Client              Client
	ChargingType        ChargingType
	Reservations        []ReservationEntry
	ActivityTitle       string
	ActivityDescription string
	TotalAmount         float64
	FinalAmount         float64
	PaymentDate         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByClient(ctx context.Context, clientEmail string) ([]*Booking, error)
}

// NormalizeReservations merges duplicate dates, deduplicates and sorts each
// date's hour set, and orders entries by ascending date.
func NormalizeReservations(entries []ReservationEntry) []ReservationEntry {
	hoursByDate := make(map[string]map[string]struct{})
	for _, entry := range entries {
		if entry.Date == "" {
			continue
		}
		set, ok := hoursByDate[entry.Date]
		if !ok {
			set = make(map[string]struct{})
			hoursByDate[entry.Date] = set
		}
		for _, hour := range entry.Hours {
			if hour == "" {
				continue
			}
			set[hour] = struct{}{}
		}
	}

	dates := make([]string, 0, len(hoursByDate))
	for date := range hoursByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]ReservationEntry, 0, len(dates))
	for _, date := range dates {
		hours := make([]string, 0, len(hoursByDate[date]))
		for hour := range hoursByDate[date] {
			hours = append(hours, hour)
		}
		sort.Strings(hours)
		out = append(out, ReservationEntry{Date: date, Hours: hours})
	}
	return out
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.PaymentDate = now.UTC()
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ProductID: b.ProductID, FinalAmount: b.FinalAmount, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}
