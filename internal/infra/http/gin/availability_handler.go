package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"reservaja/internal/app/dto"
	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
	"reservaja/internal/domain/shared/datehour"
	"reservaja/internal/infra/availability"
)

type AvailabilityHandler struct {
	Source   availability.Source
	Products catalog.Repository
}

func (h AvailabilityHandler) Days(c *gin.Context) {
	productID := catalog.ProductID(c.Param("id"))
	charging := booking.ParseChargingType(c.Query("chargingType"))
	if charging == booking.ChargingNone {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chargingType must be POR_HORA or POR_DIA"})
		return
	}
	if h.Products != nil {
		product, err := h.Products.ByID(c.Request.Context(), productID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if (charging == booking.ChargingPerHour && !product.ChargeableByHour()) ||
			(charging == booking.ChargingPerDay && !product.ChargeableByDay()) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product does not support this charging model"})
			return
		}
	}
	days, err := h.Source.AvailableDays(c.Request.Context(), productID, charging)
	if err != nil {
		c.JSON(availabilityStatus(err), gin.H{"error": err.Error()})
		return
	}
	if days == nil {
		days = []string{}
	}
	c.JSON(http.StatusOK, dto.AvailableDays{ProductID: string(productID), ChargingType: string(charging), Days: days})
}

func (h AvailabilityHandler) Hours(c *gin.Context) {
	productID := catalog.ProductID(c.Param("id"))
	date, ok := datehour.ParseDate(c.Query("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	hours, err := h.Source.AvailableHours(c.Request.Context(), productID, date)
	if err != nil {
		c.JSON(availabilityStatus(err), gin.H{"error": err.Error()})
		return
	}
	if hours == nil {
		hours = []string{}
	}
	c.JSON(http.StatusOK, dto.AvailableHours{ProductID: string(productID), Date: date, Hours: hours})
}

// availabilityStatus distinguishes "the collaborator is down" from local
// faults so clients can retry the fetch.
func availabilityStatus(err error) int {
	if errors.Is(err, availability.ErrUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var _ AvailabilityHTTP = AvailabilityHandler{}
