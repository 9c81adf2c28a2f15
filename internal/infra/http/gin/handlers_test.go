package ginserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/app/dto"
	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
	"reservaja/internal/domain/shared/events"
	"reservaja/internal/infra/availability"
	"reservaja/internal/infra/config"
	ginserver "reservaja/internal/infra/http/gin"
	"reservaja/internal/infra/obs"
	"reservaja/internal/infra/storage/memory"
)

type eventSink struct {
	published []events.DomainEvent
}

func (s *eventSink) Publish(ctx context.Context, evts ...events.DomainEvent) {
	s.published = append(s.published, evts...)
}

type fixture struct {
	handler  http.Handler
	bookings *memory.BookingRepository
	source   *availability.MemorySource
	events   *eventSink
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bookings := memory.NewBookingRepository()
	products := memory.NewProductRepository()
	source := availability.NewMemorySource()
	sink := &eventSink{}

	product := &catalog.Product{
		ID:          "p1",
		Title:       "Sala Multiuso",
		Category:    catalog.CategorySpace,
		HourlyPrice: 50,
		DailyPrice:  200,
	}
	require.NoError(t, products.Save(context.Background(), product))
	source.SetDays("p1", booking.ChargingPerDay, []string{"2025-03-10", "2025-03-11", "2025-03-12"})
	source.SetDays("p1", booking.ChargingPerHour, []string{"2025-03-10", "2025-03-11"})
	source.SetHours("p1", "2025-03-10", []string{"08:00", "09:00"})
	source.SetHours("p1", "2025-03-11", []string{"08:00"})

	server := ginserver.NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Bookings: bookings,
			Products: products,
			Source:   source,
			Events:   sink,
		},
		Availability: ginserver.AvailabilityHandler{
			Source:   source,
			Products: products,
		},
	})
	return fixture{handler: server.Handler, bookings: bookings, source: source, events: sink}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAvailabilityDays(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/p1/availability/days?chargingType=POR_DIA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload dto.AvailableDays
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, payload.Days)

	rec = f.do(t, http.MethodGet, "/api/v1/products/p1/availability/days?chargingType=POR_MES", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/products/nope/availability/days?chargingType=POR_DIA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilityDaysFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.source.Err = availability.ErrUnavailable
	rec := f.do(t, http.MethodGet, "/api/v1/products/p1/availability/days?chargingType=POR_DIA", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAvailabilityHours(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/p1/availability/hours?date=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload dto.AvailableHours
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []string{"08:00", "09:00"}, payload.Hours)

	rec = f.do(t, http.MethodGet, "/api/v1/products/p1/availability/hours?date=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func dayDraft() map[string]any {
	return map[string]any{
		"product_id":    "p1",
		"charging_type": "POR_DIA",
		"reservations": []map[string]any{
			{"date": "2025-03-10"},
			{"date": "2025-03-11"},
			{"date": "2025-03-12"},
		},
		"activity_title":       "Feira",
		"activity_description": "Exposição local",
		"client":               map[string]any{"name": "Ana", "email": "ana@example.com"},
	}
}

func TestCreateBookingByDay(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", dayDraft())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, "PENDING", payload.Status)
	require.NotNil(t, payload.ChargingType)
	assert.Equal(t, "POR_DIA", *payload.ChargingType)
	assert.Equal(t, 600.0, payload.TotalAmount)
	assert.Equal(t, 600.0, payload.FinalAmount)
	require.Len(t, payload.Reservations, 3)
	assert.Empty(t, payload.Reservations[0].Hours)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, "booking.created", f.events.published[0].EventName())
}

func TestCreateBookingByHour(t *testing.T) {
	f := newFixture(t)
	draft := map[string]any{
		"product_id":    "p1",
		"charging_type": "POR_HORA",
		"reservations": []map[string]any{
			{"date": "2025-03-10", "hours": []string{"08:00", "09:00"}},
			{"date": "2025-03-11", "hours": []string{"08:00"}},
		},
		"activity_title":       "Workshop",
		"activity_description": "Oficina de design",
		"client":               map[string]any{"name": "Ana", "email": "ana@example.com"},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 150.0, payload.TotalAmount)
	require.Len(t, payload.Reservations, 2)
	assert.Equal(t, []string{"08:00", "09:00"}, payload.Reservations[0].Hours)
}

func TestCreateBookingCollapsesDuplicateHours(t *testing.T) {
	f := newFixture(t)
	draft := map[string]any{
		"product_id":    "p1",
		"charging_type": "POR_HORA",
		"reservations": []map[string]any{
			{"date": "2025-03-10", "hours": []string{"08:00", "08:00"}},
		},
		"activity_title":       "Workshop",
		"activity_description": "Oficina de design",
		"client":               map[string]any{"name": "Ana", "email": "ana@example.com"},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Reservations, 1)
	assert.Equal(t, []string{"08:00"}, payload.Reservations[0].Hours)
	assert.Equal(t, 50.0, payload.TotalAmount)
}

func TestCreateBookingRejectsUnavailableDate(t *testing.T) {
	f := newFixture(t)
	draft := dayDraft()
	draft["reservations"] = []map[string]any{{"date": "2025-12-25"}}
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBookingRejectsUnavailableHour(t *testing.T) {
	f := newFixture(t)
	draft := map[string]any{
		"product_id":    "p1",
		"charging_type": "POR_HORA",
		"reservations": []map[string]any{
			{"date": "2025-03-10", "hours": []string{"23:00"}},
		},
		"activity_title":       "Workshop",
		"activity_description": "Oficina de design",
	}
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBookingRejectsIncompleteDraft(t *testing.T) {
	f := newFixture(t)
	draft := dayDraft()
	draft["activity_title"] = ""
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBookingUnknownProduct(t *testing.T) {
	f := newFixture(t)
	draft := dayDraft()
	draft["product_id"] = "nope"
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", draft)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingAvailabilityFailure(t *testing.T) {
	f := newFixture(t)
	f.source.Err = availability.ErrUnavailable
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", dayDraft())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestImportBookingNormalizesPayload(t *testing.T) {
	f := newFixture(t)
	raw := map[string]any{
		"status": "WEIRD",
		"product": map[string]any{
			"title": "Sala Multiuso",
		},
		"pricing": map[string]any{"chargingType": "POR_HORA"},
		"dates":   []any{"2025-03-10T09:00:00Z", "2025-03-10T08:00:00Z"},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/bookings/import", raw)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, "PENDING", payload.Status)
	assert.Equal(t, "Sala Multiuso", payload.ProductTitle)
	require.Len(t, payload.Reservations, 1)
	assert.Equal(t, []string{"08:00", "09:00"}, payload.Reservations[0].Hours)
}

func TestImportBookingToleratesGarbage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/bookings/import", []any{"not", "a", "booking"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "PENDING", payload.Status)
	assert.Empty(t, payload.Reservations)
}

func TestBookingLifecycleEndpoints(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/bookings", dayDraft())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.do(t, http.MethodGet, "/api/v1/bookings/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/bookings?client_email=ana@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.BookingCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)

	rec = f.do(t, http.MethodPost, "/api/v1/bookings/"+created.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, "CONFIRMED", confirmed.Status)

	// A second confirm is an invalid transition.
	rec = f.do(t, http.MethodPost, "/api/v1/bookings/"+created.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/bookings/"+created.ID+"/cancel", map[string]any{"reason": "change of plans"})
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled dto.BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, "CANCELLED", cancelled.Status)

	rec = f.do(t, http.MethodGet, "/api/v1/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
