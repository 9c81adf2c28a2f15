// Package normalizer maps loosely-typed backend booking payloads into the
// canonical booking entity. The backend schema has drifted over time (nested
// vs flat fields, ISO timestamps vs split date/hour pairs), so every field is
// resolved through ordered path probes with a documented default, and no
// input shape may cause an error.
package normalizer

import (
	"time"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
	"reservaja/internal/domain/shared/datehour"
)

// dateFieldKeys and hourFieldKeys are the alternate names split date/time
// entries have shipped under.
var (
	dateFieldKeys = []string{"date", "datetime", "timestamp"}
	hourFieldKeys = []string{"hour", "time"}
)

// ParseDateHour extracts one calendar date plus optional hour label from a
// raw reservation entry. Entries that match no known encoding are discarded
// by the caller; this function never fails loudly.
func ParseDateHour(entry any) (datehour.DateHour, bool) {
	switch v := entry.(type) {
	case string:
		if t, ok := datehour.ParseInstant(v); ok {
			date, hour := datehour.Split(t)
			return datehour.DateHour{Date: date, Hour: hour}, true
		}
		if date, ok := datehour.ParseDate(v); ok {
			return datehour.DateHour{Date: date}, true
		}
		return datehour.DateHour{}, false
	case time.Time:
		date, hour := datehour.Split(v)
		return datehour.DateHour{Date: date, Hour: hour}, true
	case map[string]any:
		return parseStructuredEntry(v)
	default:
		return datehour.DateHour{}, false
	}
}

func parseStructuredEntry(entry map[string]any) (datehour.DateHour, bool) {
	var dateVal any
	for _, key := range dateFieldKeys {
		if v, ok := entry[key]; ok {
			dateVal = v
			break
		}
	}
	var explicitHour string
	for _, key := range hourFieldKeys {
		if s, ok := entry[key].(string); ok && s != "" {
			explicitHour = s
			break
		}
	}

	switch dv := dateVal.(type) {
	case time.Time:
		date, hour := datehour.Split(dv)
		if explicitHour != "" {
			hour = explicitHour
		}
		return datehour.DateHour{Date: date, Hour: hour}, true
	case string:
		if t, ok := datehour.ParseInstant(dv); ok {
			date, hour := datehour.Split(t)
			if explicitHour != "" {
				hour = explicitHour
			}
			return datehour.DateHour{Date: date, Hour: hour}, true
		}
		// The date alone did not parse as an instant; re-join it with the
		// explicit hour and retry before giving up.
		if explicitHour != "" {
			if t, ok := datehour.Combine(dv, explicitHour); ok {
				date, hour := datehour.Split(t)
				return datehour.DateHour{Date: date, Hour: hour}, true
			}
		}
		if date, ok := datehour.ParseDate(dv); ok {
			// Hour labels are opaque; one that does not re-join into an
			// instant (e.g. "8h-9h") is kept verbatim.
			return datehour.DateHour{Date: date, Hour: explicitHour}, true
		}
		return datehour.DateHour{}, false
	default:
		return datehour.DateHour{}, false
	}
}

// MapBackendBooking converts an arbitrary backend booking record into the
// canonical shape. It terminates normally for every input, including nil,
// and degrades each unparseable field to its documented default.
func MapBackendBooking(raw any) booking.Booking {
	data, _ := raw.(map[string]any)
	now := time.Now().UTC()

	createdAt := timeProbe(data, "createdAt", "created_at")
	if createdAt.IsZero() {
		createdAt = now
	}
	paymentDate := timeProbe(data, "paymentConfirmedAt", "paymentDate", "payment.confirmedAt")
	if paymentDate.IsZero() {
		paymentDate = createdAt
	}

	discount, _ := numberProbe(data, "product.discountPercentage", "productDiscount", "discountPercentage")
	total, _ := numberProbe(data, "totalAmount", "pricing.totalAmount", "amount")
	final, hasFinal := numberProbe(data, "finalAmount", "pricing.finalAmount")
	if !hasFinal {
		final = total
		if discount > 0 {
			final = total * (1 - discount/100)
		}
	}

	b := booking.Booking{
		ID:              booking.BookingID(stringProbe(data, "id", "_id", "bookingId")),
		Status:          booking.NormalizeStatus(stringProbe(data, "status", "bookingStatus")),
		ProductID:       stringProbe(data, "product.id", "productId"),
		ProductTitle:    stringProbe(data, "product.title", "productTitle"),
		ProductCategory: stringProbe(data, "product.category", "productCategory"),
		ProductType:     stringProbe(data, "product.type", "productType"),
		ProductImages:   stringSliceProbe(data, "product.images", "productImage", "images"),
		ProductAddress: catalog.Address{
			Street:       stringProbe(data, "product.address.street", "address.street", "street"),
			Number:       stringProbe(data, "product.address.number", "address.number", "number"),
			Neighborhood: stringProbe(data, "product.address.neighborhood", "address.neighborhood", "neighborhood"),
			City:         stringProbe(data, "product.address.city", "address.city", "city"),
			State:        stringProbe(data, "product.address.state", "address.state", "state"),
		},
		Institution: catalog.Contact{
			Email: stringProbe(data, "product.institution.email", "institution.email", "institutionEmail"),
			Phone: stringProbe(data, "product.institution.phone", "institution.phone", "institutionPhone"),
		},
		ProductDiscount: discount,
		Client: booking.Client{
			Name:  stringProbe(data, "client.name", "clientName", "user.name"),
			Email: stringProbe(data, "client.email", "clientEmail", "user.email"),
			Phone: stringProbe(data, "client.phone", "clientPhone", "user.phone"),
		},
		ChargingType:        booking.ParseChargingType(stringProbe(data, "pricing.chargingType", "chargingType")),
		Reservations:        parseReservations(data),
		ActivityTitle:       stringProbe(data, "activity.title", "activityTitle"),
		ActivityDescription: stringProbe(data, "activity.description", "activityDescription"),
		TotalAmount:         total,
		FinalAmount:         final,
		PaymentDate:         paymentDate,
		CreatedAt:           createdAt,
	}
	return b
}

// parseReservations parses, groups, and orders the raw date list. Entries
// that already carry a grouped hours list (a canonical record fed back in)
// expand into one parsed entry per hour so re-normalizing is idempotent.
func parseReservations(data map[string]any) []booking.ReservationEntry {
	rawDates := sliceProbe(data, "dates", "reservations", "reservedDates")

	var entries []booking.ReservationEntry
	for _, rawEntry := range rawDates {
		if grouped, ok := parseGroupedEntry(rawEntry); ok {
			entries = append(entries, grouped)
			continue
		}
		dh, ok := ParseDateHour(rawEntry)
		if !ok {
			continue
		}
		entry := booking.ReservationEntry{Date: dh.Date}
		if dh.Hour != "" {
			entry.Hours = []string{dh.Hour}
		}
		entries = append(entries, entry)
	}
	return booking.NormalizeReservations(entries)
}

func parseGroupedEntry(rawEntry any) (booking.ReservationEntry, bool) {
	entry, ok := rawEntry.(map[string]any)
	if !ok {
		return booking.ReservationEntry{}, false
	}
	rawHours, ok := entry["hours"].([]any)
	if !ok {
		return booking.ReservationEntry{}, false
	}
	dh, ok := ParseDateHour(entry)
	if !ok {
		return booking.ReservationEntry{}, false
	}
	grouped := booking.ReservationEntry{Date: dh.Date}
	for _, rawHour := range rawHours {
		if hour, ok := rawHour.(string); ok && hour != "" {
			grouped.Hours = append(grouped.Hours, hour)
		}
	}
	return grouped, true
}

func timeProbe(m map[string]any, paths ...string) time.Time {
	for _, path := range paths {
		v, ok := lookup(m, path)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return t.UTC()
		case string:
			if parsed, ok := datehour.ParseInstant(t); ok {
				return parsed
			}
		}
	}
	return time.Time{}
}
