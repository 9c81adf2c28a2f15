package ginserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reservaja/internal/app/dto"
	"reservaja/internal/app/normalizer"
	"reservaja/internal/app/session"
	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
	"reservaja/internal/domain/shared/events"
)

// EventSink receives drained domain events for publishing. Delivery is
// fire-and-forget; a failed publish never fails the request.
type EventSink interface {
	Publish(ctx context.Context, evts ...events.DomainEvent)
}

type BookingHandler struct {
	Bookings booking.Repository
	Products catalog.Repository
	Source   sessionAvailability
	Events   EventSink
}

// sessionAvailability is the slice of the availability source the booking
// flow needs.
type sessionAvailability interface {
	AvailableDays(ctx context.Context, productID catalog.ProductID, charging booking.ChargingType) ([]string, error)
	AvailableHours(ctx context.Context, productID catalog.ProductID, date string) ([]string, error)
}

type reservationRequest struct {
	Date  string   `json:"date" binding:"required"`
	Hours []string `json:"hours"`
}

type createBookingRequest struct {
	ProductID           string               `json:"product_id" binding:"required"`
	ChargingType        string               `json:"charging_type" binding:"required"`
	Reservations        []reservationRequest `json:"reservations" binding:"required,min=1"`
	ActivityTitle       string               `json:"activity_title"`
	ActivityDescription string               `json:"activity_description"`
	Client              dto.ClientDTO        `json:"client"`
}

// Create runs the reservation builder server-side against the live
// availability sets, so a submitted draft passes exactly the same predicate
// the calendar UI gates its submit button on.
func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	product, err := h.Products.ByID(ctx, catalog.ProductID(req.ProductID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	sess := session.New(*product)
	sess, daysToken, ok := sess.SelectChargingModel(booking.ParseChargingType(req.ChargingType))
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product does not support this charging model"})
		return
	}
	days, err := h.Source.AvailableDays(ctx, product.ID, sess.Charging())
	if err != nil {
		c.JSON(availabilityStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess = sess.ApplyAvailableDays(daysToken, days)

	dates := make([]string, 0, len(req.Reservations))
	for _, entry := range req.Reservations {
		dates = append(dates, entry.Date)
	}
	sess = sess.ToggleDates(dates)
	if len(sess.Selection()) != len(req.Reservations) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "one or more dates are not available"})
		return
	}

	if sess.Charging() == booking.ChargingPerHour {
		sess, ok = h.applyHourPicks(ctx, c, sess, req.Reservations)
		if !ok {
			return
		}
	}

	if !sess.CanSubmit(req.ActivityTitle, req.ActivityDescription) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking draft is incomplete"})
		return
	}
	client := booking.Client{Name: req.Client.Name, Email: req.Client.Email, Phone: req.Client.Phone}
	b, ok := sess.Build(req.ActivityTitle, req.ActivityDescription, client, time.Now())
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking draft is incomplete"})
		return
	}

	b.ID = booking.BookingID(uuid.NewString())
	dateList := make([]string, 0, len(b.Reservations))
	for _, entry := range b.Reservations {
		dateList = append(dateList, entry.Date)
	}
	b.Record(booking.BookingCreated{
		BookingID:    b.ID,
		ProductID:    b.ProductID,
		ClientEmail:  b.Client.Email,
		ChargingType: b.ChargingType,
		Dates:        dateList,
		TotalAmount:  b.TotalAmount,
		FinalAmount:  b.FinalAmount,
		At:           b.CreatedAt,
	})
	if err := h.Bookings.Save(ctx, &b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.publish(ctx, &b)
	c.JSON(http.StatusCreated, dto.MapBooking(&b))
}

func (h BookingHandler) applyHourPicks(ctx context.Context, c *gin.Context, sess session.Session, reservations []reservationRequest) (session.Session, bool) {
	for _, entry := range reservations {
		next, token, started := sess.BeginHoursFetch(entry.Date)
		if started {
			hours, err := h.Source.AvailableHours(ctx, sess.Product().ID, entry.Date)
			if err != nil {
				c.JSON(availabilityStatus(err), gin.H{"error": err.Error()})
				return sess, false
			}
			sess = next.ApplyAvailableHours(token, hours)
		}
		// A repeated hour in the request would toggle the slot back off.
		seen := make(map[string]bool, len(entry.Hours))
		for _, hour := range entry.Hours {
			if seen[hour] {
				continue
			}
			seen[hour] = true
			toggled := sess.ToggleHour(entry.Date, hour)
			if len(selectedHours(toggled, entry.Date)) == len(selectedHours(sess, entry.Date)) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "hour slot " + hour + " is not available on " + entry.Date})
				return sess, false
			}
			sess = toggled
		}
	}
	return sess, true
}

func selectedHours(sess session.Session, date string) []string {
	for _, entry := range sess.Selection() {
		if entry.Date == date {
			return entry.Hours
		}
	}
	return nil
}

// Import accepts a raw legacy booking payload and normalizes it into the
// canonical shape. Malformed payloads still produce a best-effort record;
// only transport-level failures are reported.
func (h BookingHandler) Import(c *gin.Context) {
	var raw any
	_ = c.ShouldBindJSON(&raw)
	b := normalizer.MapBackendBooking(raw)
	if b.ID == "" {
		b.ID = booking.BookingID(uuid.NewString())
	}
	if err := h.Bookings.Save(c.Request.Context(), &b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(&b))
}

func (h BookingHandler) Get(c *gin.Context) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(b))
}

func (h BookingHandler) List(c *gin.Context) {
	bookings, err := h.Bookings.ListByClient(c.Request.Context(), c.Query("client_email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingCollection(bookings))
}

func (h BookingHandler) Confirm(c *gin.Context) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := b.Confirm(time.Now()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.saveAndRespond(c, b)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	b, ok := h.lookup(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	if err := b.Cancel(req.Reason, time.Now()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.saveAndRespond(c, b)
}

func (h BookingHandler) lookup(c *gin.Context) (*booking.Booking, bool) {
	b, err := h.Bookings.ByID(c.Request.Context(), booking.BookingID(c.Param("id")))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, booking.ErrBookingNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return b, true
}

func (h BookingHandler) saveAndRespond(c *gin.Context, b *booking.Booking) {
	if err := h.Bookings.Save(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.publish(c.Request.Context(), b)
	c.JSON(http.StatusOK, dto.MapBooking(b))
}

func (h BookingHandler) publish(ctx context.Context, b *booking.Booking) {
	if h.Events == nil {
		return
	}
	pending := b.PendingEvents()
	b.ClearEvents()
	h.Events.Publish(ctx, pending...)
}

var _ BookingHTTP = BookingHandler{}
