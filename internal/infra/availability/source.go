// Package availability talks to the external availability collaborator: the
// backend service that knows which days and hour slots a product can still be
// booked for. Failures are recoverable and always distinguishable from an
// empty-but-successful result.
package availability

import (
	"context"
	"errors"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
)

var ErrUnavailable = errors.New("availability: source unavailable")

type Source interface {
	AvailableDays(ctx context.Context, productID catalog.ProductID, charging booking.ChargingType) ([]string, error)
	AvailableHours(ctx context.Context, productID catalog.ProductID, date string) ([]string, error)
}
