package dto

import (
	"time"

	domainbooking "reservaja/internal/domain/booking"
)

type AddressDTO struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type ContactDTO struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ClientDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ReservationEntryDTO struct {
	Date  string   `json:"date"`
	Hours []string `json:"hours"`
}

type BookingDTO struct {
	ID                  string                `json:"id"`
	Status              string                `json:"status"`
	ProductID           string                `json:"product_id"`
	ProductTitle        string                `json:"product_title"`
	ProductCategory     string                `json:"product_category"`
	ProductType         string                `json:"product_type"`
	ProductImage        []string              `json:"product_image"`
	ProductAddress      AddressDTO            `json:"product_address"`
	Institution         ContactDTO            `json:"institution"`
	ProductDiscount     float64               `json:"product_discount"`
	Client              ClientDTO             `json:"client"`
	ChargingType        *string               `json:"charging_type"`
	Reservations        []ReservationEntryDTO `json:"reservations"`
	ActivityTitle       string                `json:"activity_title"`
	ActivityDescription string                `json:"activity_description"`
	TotalAmount         float64               `json:"total_amount"`
	FinalAmount         float64               `json:"final_amount"`
	PaymentDate         time.Time             `json:"payment_date"`
	CreatedAt           time.Time             `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingDTO `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingDTO {
	if b == nil {
		return BookingDTO{}
	}
	var charging *string
	if b.ChargingType != domainbooking.ChargingNone {
		value := string(b.ChargingType)
		charging = &value
	}
	reservations := make([]ReservationEntryDTO, 0, len(b.Reservations))
	for _, entry := range b.Reservations {
		hours := entry.Hours
		if hours == nil {
			hours = []string{}
		}
		reservations = append(reservations, ReservationEntryDTO{Date: entry.Date, Hours: hours})
	}
	return BookingDTO{
		ID:              string(b.ID),
		Status:          string(b.Status),
		ProductID:       b.ProductID,
		ProductTitle:    b.ProductTitle,
		ProductCategory: b.ProductCategory,
		ProductType:     b.ProductType,
		ProductImage:    b.ProductImages,
		ProductAddress: AddressDTO{
			Street:       b.ProductAddress.Street,
			Number:       b.ProductAddress.Number,
			Neighborhood: b.ProductAddress.Neighborhood,
			City:         b.ProductAddress.City,
			State:        b.ProductAddress.State,
		},
		Institution: ContactDTO{
			Email: b.Institution.Email,
			Phone: b.Institution.Phone,
		},
		ProductDiscount: b.ProductDiscount,
		Client: ClientDTO{
			Name:  b.Client.Name,
			Email: b.Client.Email,
			Phone: b.Client.Phone,
		},
		ChargingType:        charging,
		Reservations:        reservations,
		ActivityTitle:       b.ActivityTitle,
		ActivityDescription: b.ActivityDescription,
		TotalAmount:         b.TotalAmount,
		FinalAmount:         b.FinalAmount,
		PaymentDate:         b.PaymentDate,
		CreatedAt:           b.CreatedAt,
	}
}

func MapBookingCollection(bookings []*domainbooking.Booking) BookingCollection {
	items := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, MapBooking(b))
	}
	return BookingCollection{Items: items}
}
