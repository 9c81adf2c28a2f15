package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/domain/booking"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]booking.Status{
		"PENDING":   booking.StatusPending,
		"CONFIRMED": booking.StatusConfirmed,
		"CANCELLED": booking.StatusCancelled,
		"COMPLETED": booking.StatusCompleted,
		"WEIRD":     booking.StatusPending,
		"pending":   booking.StatusPending,
		"":          booking.StatusPending,
	}
	for raw, want := range cases {
		assert.Equal(t, want, booking.NormalizeStatus(raw), "raw=%q", raw)
	}
}

func TestParseChargingType(t *testing.T) {
	assert.Equal(t, booking.ChargingPerHour, booking.ParseChargingType("POR_HORA"))
	assert.Equal(t, booking.ChargingPerDay, booking.ParseChargingType("POR_DIA"))
	assert.Equal(t, booking.ChargingNone, booking.ParseChargingType("POR_MES"))
	assert.Equal(t, booking.ChargingNone, booking.ParseChargingType(""))
}

func TestNormalizeReservations(t *testing.T) {
	entries := []booking.ReservationEntry{
		{Date: "2025-03-11", Hours: []string{"08:00"}},
		{Date: "2025-03-10", Hours: []string{"09:00", "08:00", "09:00"}},
		{Date: "2025-03-10", Hours: []string{"08:00", ""}},
		{Date: ""},
	}
	got := booking.NormalizeReservations(entries)
	require.Len(t, got, 2)
	assert.Equal(t, booking.ReservationEntry{Date: "2025-03-10", Hours: []string{"08:00", "09:00"}}, got[0])
	assert.Equal(t, booking.ReservationEntry{Date: "2025-03-11", Hours: []string{"08:00"}}, got[1])
}

func TestNormalizeReservationsKeepsDayOnlyEntries(t *testing.T) {
	got := booking.NormalizeReservations([]booking.ReservationEntry{{Date: "2025-03-10"}})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Hours)
}

func TestConfirmTransition(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	b := &booking.Booking{ID: "b1", Status: booking.StatusPending}

	require.NoError(t, b.Confirm(now))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, now, b.PaymentDate)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.confirmed", events[0].EventName())

	assert.ErrorIs(t, b.Confirm(now), booking.ErrInvalidState)
}

func TestCancelTransition(t *testing.T) {
	now := time.Now().UTC()

	b := &booking.Booking{Status: booking.StatusPending}
	require.NoError(t, b.Cancel("client request", now))
	assert.Equal(t, booking.StatusCancelled, b.Status)

	b = &booking.Booking{Status: booking.StatusConfirmed}
	require.NoError(t, b.Cancel("", now))

	b = &booking.Booking{Status: booking.StatusCompleted}
	assert.ErrorIs(t, b.Cancel("", now), booking.ErrInvalidState)
}

func TestCompleteTransition(t *testing.T) {
	now := time.Now().UTC()

	b := &booking.Booking{Status: booking.StatusConfirmed}
	require.NoError(t, b.Complete(now))
	assert.Equal(t, booking.StatusCompleted, b.Status)

	b = &booking.Booking{Status: booking.StatusPending}
	assert.ErrorIs(t, b.Complete(now), booking.ErrInvalidState)
}
