// Package session holds the in-progress reservation a user assembles for one
// product: the chosen charging model, the fetched availability sets, and the
// date/hour picks. A Session is a value; every transition returns a new
// Session so a booking flow can be replayed and tested without a UI harness.
package session

import (
	"sort"
	"strings"
	"time"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
)

type Phase string

const (
	PhaseNoModel      Phase = "NO_MODEL"
	PhaseModelChosen  Phase = "MODEL_CHOSEN"
	PhaseDaysReady    Phase = "DAYS_READY"
	PhaseDatesPicked  Phase = "DATES_PICKED"
	PhaseHoursPending Phase = "HOURS_PENDING"
	PhaseHoursReady   Phase = "HOURS_READY"
	PhaseValid        Phase = "VALID"
	PhaseSubmitted    Phase = "SUBMITTED"
)

// FetchToken tags an availability fetch with the context it was issued for.
// A response whose token no longer matches the session is stale and must be
// discarded; there is no cancellation of in-flight fetches, only this guard.
type FetchToken struct {
	ProductID  catalog.ProductID
	Charging   booking.ChargingType
	Date       string
	Generation int
}

// Session is one booking-creation attempt against a single product.
type Session struct {
	product       catalog.Product
	charging      booking.ChargingType
	generation    int
	daysLoading   bool
	availableDays []string
	hoursByDate   map[string][]string
	pendingHours  map[string]bool
	selection     []booking.ReservationEntry
	submitted     bool
}

func New(product catalog.Product) Session {
	return Session{product: product}
}

func (s Session) Product() catalog.Product       { return s.product }
func (s Session) Charging() booking.ChargingType { return s.charging }
func (s Session) AvailableDays() []string        { return append([]string(nil), s.availableDays...) }
func (s Session) DaysLoading() bool              { return s.daysLoading }
func (s Session) Selection() []booking.ReservationEntry {
	out := make([]booking.ReservationEntry, len(s.selection))
	for i, entry := range s.selection {
		out[i] = booking.ReservationEntry{Date: entry.Date, Hours: append([]string(nil), entry.Hours...)}
	}
	return out
}

// AvailableHours returns the fetched hour slots for a date and whether the
// fetch has resolved yet.
func (s Session) AvailableHours(date string) ([]string, bool) {
	hours, ok := s.hoursByDate[date]
	if !ok {
		return nil, false
	}
	return append([]string(nil), hours...), true
}

func (s Session) HoursLoading(date string) bool { return s.pendingHours[date] }

// SelectChargingModel activates a charging model, discarding any prior picks
// because the price basis changes. Selecting a model the product has no
// positive price for is a no-op; the caller's UI is expected to disable that
// affordance. The returned token must accompany the day fetch the caller
// issues next.
func (s Session) SelectChargingModel(model booking.ChargingType) (Session, FetchToken, bool) {
	switch model {
	case booking.ChargingPerHour:
		if !s.product.ChargeableByHour() {
			return s, FetchToken{}, false
		}
	case booking.ChargingPerDay:
		if !s.product.ChargeableByDay() {
			return s, FetchToken{}, false
		}
	default:
		return s, FetchToken{}, false
	}
	next := s.clone()
	next.charging = model
	next.generation++
	next.daysLoading = true
	next.availableDays = nil
	next.hoursByDate = nil
	next.pendingHours = nil
	next.selection = nil
	next.submitted = false
	return next, next.daysToken(), true
}

// DaysToken re-issues the token for the current day fetch, used to retry
// after a failed fetch without disturbing the session.
func (s Session) DaysToken() FetchToken { return s.daysToken() }

func (s Session) daysToken() FetchToken {
	return FetchToken{ProductID: s.product.ID, Charging: s.charging, Generation: s.generation}
}

// ApplyAvailableDays installs a resolved day fetch. Stale responses, ones
// whose token no longer matches the session, leave the session untouched.
func (s Session) ApplyAvailableDays(token FetchToken, days []string) Session {
	if !s.tokenCurrent(token) || token.Date != "" {
		return s
	}
	next := s.clone()
	next.daysLoading = false
	next.availableDays = dedupSorted(days)
	next.selection = filterSelection(next.selection, next.availableDays)
	return next
}

// ApplyDaysFetchFailed clears the loading state, keeping the last known
// availability set so the caller can surface the error and retry.
func (s Session) ApplyDaysFetchFailed(token FetchToken) Session {
	if !s.tokenCurrent(token) || token.Date != "" {
		return s
	}
	next := s.clone()
	next.daysLoading = false
	return next
}

// ToggleDates reconciles the full set of picked dates reported by a calendar
// widget. Dropped dates lose their hour picks; new dates start with an empty
// hour set. Dates outside the available set are rejected here even if the
// presentation layer already filtered them.
func (s Session) ToggleDates(dates []string) Session {
	if s.charging == booking.ChargingNone || s.daysLoading {
		return s
	}
	picked := make(map[string]bool, len(dates))
	for _, date := range dates {
		picked[date] = true
	}
	available := make(map[string]bool, len(s.availableDays))
	for _, date := range s.availableDays {
		available[date] = true
	}

	next := s.clone()
	var selection []booking.ReservationEntry
	retained := make(map[string]bool)
	for _, entry := range next.selection {
		if picked[entry.Date] && available[entry.Date] {
			selection = append(selection, entry)
			retained[entry.Date] = true
		}
	}
	for _, date := range dates {
		if retained[date] || !available[date] {
			continue
		}
		retained[date] = true
		selection = append(selection, booking.ReservationEntry{Date: date})
	}
	next.selection = selection
	return next
}

// NeedsHoursFetch reports whether a selected date still requires an hour
// fetch. Resolved dates are memoized and never re-fetched.
func (s Session) NeedsHoursFetch(date string) bool {
	if s.charging != booking.ChargingPerHour || !s.dateSelected(date) {
		return false
	}
	if _, fetched := s.hoursByDate[date]; fetched {
		return false
	}
	return !s.pendingHours[date]
}

// BeginHoursFetch marks an hour fetch in flight and returns its token.
func (s Session) BeginHoursFetch(date string) (Session, FetchToken, bool) {
	if !s.NeedsHoursFetch(date) {
		return s, FetchToken{}, false
	}
	next := s.clone()
	if next.pendingHours == nil {
		next.pendingHours = make(map[string]bool)
	}
	next.pendingHours[date] = true
	token := next.daysToken()
	token.Date = date
	return next, token, true
}

// ApplyAvailableHours installs a resolved hour fetch for a date, discarding
// the response if the model switched or the date was dropped meanwhile.
func (s Session) ApplyAvailableHours(token FetchToken, hours []string) Session {
	if !s.tokenCurrent(token) || token.Date == "" || !s.dateSelected(token.Date) {
		return s
	}
	next := s.clone()
	delete(next.pendingHours, token.Date)
	if next.hoursByDate == nil {
		next.hoursByDate = make(map[string][]string)
	}
	next.hoursByDate[token.Date] = dedupSorted(hours)
	return next
}

// ApplyHoursFetchFailed drops the in-flight marker so the fetch can be
// retried.
func (s Session) ApplyHoursFetchFailed(token FetchToken) Session {
	if !s.tokenCurrent(token) || token.Date == "" {
		return s
	}
	next := s.clone()
	delete(next.pendingHours, token.Date)
	return next
}

// ToggleHour flips one slot in a selected date's hour set. It is a no-op for
// by-day sessions, unselected dates, and slots the availability source never
// reported.
func (s Session) ToggleHour(date, slot string) Session {
	if s.charging != booking.ChargingPerHour || !s.dateSelected(date) {
		return s
	}
	fetched, ok := s.hoursByDate[date]
	if !ok || !contains(fetched, slot) {
		return s
	}
	next := s.clone()
	for i, entry := range next.selection {
		if entry.Date != date {
			continue
		}
		if contains(entry.Hours, slot) {
			next.selection[i].Hours = remove(entry.Hours, slot)
		} else {
			next.selection[i].Hours = append(entry.Hours, slot)
		}
		break
	}
	return next
}

// Total computes the pre-discount amount for the current selection.
func (s Session) Total() float64 {
	switch s.charging {
	case booking.ChargingPerDay:
		return float64(len(s.selection)) * s.product.DailyPrice
	case booking.ChargingPerHour:
		hours := 0
		for _, entry := range s.selection {
			hours += len(entry.Hours)
		}
		return float64(hours) * s.product.HourlyPrice
	default:
		return 0
	}
}

// FinalTotal applies the product discount to Total.
func (s Session) FinalTotal() float64 {
	total := s.Total()
	if s.product.DiscountPercentage > 0 {
		return total * (1 - s.product.DiscountPercentage/100)
	}
	return total
}

// CanSubmit is the submit-readiness predicate. Build uses exactly this check,
// and the UI must gate its submit action on the same answer.
func (s Session) CanSubmit(activityTitle, activityDescription string) bool {
	if s.charging == booking.ChargingNone || len(s.selection) == 0 {
		return false
	}
	if strings.TrimSpace(activityTitle) == "" || strings.TrimSpace(activityDescription) == "" {
		return false
	}
	if s.charging == booking.ChargingPerHour {
		for _, entry := range s.selection {
			if len(entry.Hours) == 0 {
				return false
			}
		}
	}
	return true
}

// Build assembles the canonical booking from the current selection. The
// second return is false when the session is not submittable; an invalid
// build is a caller bug, not a user-facing failure, so nothing is mutated.
func (s Session) Build(activityTitle, activityDescription string, client booking.Client, now time.Time) (booking.Booking, bool) {
	if !s.CanSubmit(activityTitle, activityDescription) {
		return booking.Booking{}, false
	}
	reservations := s.Selection()
	if s.charging == booking.ChargingPerDay {
		for i := range reservations {
			reservations[i].Hours = nil
		}
	}
	now = now.UTC()
	return booking.Booking{
		Status:              booking.StatusPending,
		ProductID:           string(s.product.ID),
		ProductTitle:        s.product.Title,
		ProductCategory:     string(s.product.Category),
		ProductType:         s.product.Type,
		ProductImages:       append([]string(nil), s.product.Images...),
		ProductAddress:      s.product.Address,
		Institution:         s.product.Owner,
		ProductDiscount:     s.product.DiscountPercentage,
		Client:              client,
		ChargingType:        s.charging,
		Reservations:        booking.NormalizeReservations(reservations),
		ActivityTitle:       activityTitle,
		ActivityDescription: activityDescription,
		TotalAmount:         s.Total(),
		FinalAmount:         s.FinalTotal(),
		PaymentDate:         now,
		CreatedAt:           now,
	}, true
}

// MarkSubmitted records that the selection was handed to payment. The caller
// discards the session afterwards; there is no cancelled phase here.
func (s Session) MarkSubmitted() Session {
	next := s.clone()
	next.submitted = true
	return next
}

// Phase derives the session's position in the booking flow.
func (s Session) Phase() Phase {
	switch {
	case s.submitted:
		return PhaseSubmitted
	case s.charging == booking.ChargingNone:
		return PhaseNoModel
	case s.daysLoading:
		return PhaseModelChosen
	case len(s.selection) == 0:
		return PhaseDaysReady
	case s.charging == booking.ChargingPerDay:
		return PhaseValid
	}
	pending := false
	empty := false
	for _, entry := range s.selection {
		if _, fetched := s.hoursByDate[entry.Date]; !fetched {
			pending = true
		}
		if len(entry.Hours) == 0 {
			empty = true
		}
	}
	switch {
	case pending:
		return PhaseHoursPending
	case empty:
		return PhaseHoursReady
	default:
		return PhaseValid
	}
}

func (s Session) tokenCurrent(token FetchToken) bool {
	return token.ProductID == s.product.ID &&
		token.Charging == s.charging &&
		token.Generation == s.generation
}

func (s Session) dateSelected(date string) bool {
	for _, entry := range s.selection {
		if entry.Date == date {
			return true
		}
	}
	return false
}

func (s Session) clone() Session {
	next := s
	next.availableDays = append([]string(nil), s.availableDays...)
	next.selection = make([]booking.ReservationEntry, len(s.selection))
	for i, entry := range s.selection {
		next.selection[i] = booking.ReservationEntry{Date: entry.Date, Hours: append([]string(nil), entry.Hours...)}
	}
	if s.hoursByDate != nil {
		next.hoursByDate = make(map[string][]string, len(s.hoursByDate))
		for date, hours := range s.hoursByDate {
			next.hoursByDate[date] = append([]string(nil), hours...)
		}
	}
	if s.pendingHours != nil {
		next.pendingHours = make(map[string]bool, len(s.pendingHours))
		for date, pending := range s.pendingHours {
			next.pendingHours[date] = pending
		}
	}
	return next
}

func filterSelection(selection []booking.ReservationEntry, availableDays []string) []booking.ReservationEntry {
	available := make(map[string]bool, len(availableDays))
	for _, date := range availableDays {
		available[date] = true
	}
	var out []booking.ReservationEntry
	for _, entry := range selection {
		if available[entry.Date] {
			out = append(out, entry)
		}
	}
	return out
}

func dedupSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

func remove(values []string, v string) []string {
	out := values[:0]
	for _, item := range values {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
