package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "reservaja/internal/domain/booking"
	domaincatalog "reservaja/internal/domain/catalog"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientEmail string) ([]*domainbooking.Booking, error) {
	filter := bson.M{}
	if clientEmail != "" {
		filter["client.email"] = clientEmail
	}
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

type reservationDocument struct {
	Date  string   `bson:"date"`
	Hours []string `bson:"hours"`
}

type addressDocument struct {
	Street       string `bson:"street"`
	Number       string `bson:"number"`
	Neighborhood string `bson:"neighborhood"`
	City         string `bson:"city"`
	State        string `bson:"state"`
}

type contactDocument struct {
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

type clientDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

type bookingDocument struct {
	ID                  string                `bson:"_id"`
	Status              string                `bson:"status"`
	ProductID           string                `bson:"product_id"`
	ProductTitle        string                `bson:"product_title"`
	ProductCategory     string                `bson:"product_category"`
	ProductType         string                `bson:"product_type"`
	ProductImages       []string              `bson:"product_images"`
	ProductAddress      addressDocument       `bson:"product_address"`
	Institution         contactDocument       `bson:"institution"`
	ProductDiscount     float64               `bson:"product_discount"`
	Client              clientDocument        `bson:"client"`
	ChargingType        string                `bson:"charging_type"`
	Reservations        []reservationDocument `bson:"reservations"`
	ActivityTitle       string                `bson:"activity_title"`
	ActivityDescription string                `bson:"activity_description"`
	TotalAmount         float64               `bson:"total_amount"`
	FinalAmount         float64               `bson:"final_amount"`
	PaymentDate         int64                 `bson:"payment_date"`
	CreatedAt           int64                 `bson:"created_at"`
	UpdatedAt           int64                 `bson:"updated_at"`
	Version             int64                 `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	reservations := make([]reservationDocument, 0, len(b.Reservations))
	for _, entry := range b.Reservations {
		reservations = append(reservations, reservationDocument{Date: entry.Date, Hours: entry.Hours})
	}
	return bookingDocument{
		ID:              string(b.ID),
		Status:          string(b.Status),
		ProductID:       b.ProductID,
		ProductTitle:    b.ProductTitle,
		ProductCategory: b.ProductCategory,
		ProductType:     b.ProductType,
		ProductImages:   b.ProductImages,
		ProductAddress: addressDocument{
			Street:       b.ProductAddress.Street,
			Number:       b.ProductAddress.Number,
			Neighborhood: b.ProductAddress.Neighborhood,
			City:         b.ProductAddress.City,
			State:        b.ProductAddress.State,
		},
		Institution:         contactDocument{Email: b.Institution.Email, Phone: b.Institution.Phone},
		ProductDiscount:     b.ProductDiscount,
		Client:              clientDocument{Name: b.Client.Name, Email: b.Client.Email, Phone: b.Client.Phone},
		ChargingType:        string(b.ChargingType),
		Reservations:        reservations,
		ActivityTitle:       b.ActivityTitle,
		ActivityDescription: b.ActivityDescription,
		TotalAmount:         b.TotalAmount,
		FinalAmount:         b.FinalAmount,
		PaymentDate:         b.PaymentDate.UnixMilli(),
		CreatedAt:           b.CreatedAt.UnixMilli(),
		UpdatedAt:           b.UpdatedAt.UnixMilli(),
		Version:             b.Version,
	}
}

func (d bookingDocument) toEntity() *domainbooking.Booking {
	reservations := make([]domainbooking.ReservationEntry, 0, len(d.Reservations))
	for _, entry := range d.Reservations {
		reservations = append(reservations, domainbooking.ReservationEntry{Date: entry.Date, Hours: entry.Hours})
	}
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		Status:          domainbooking.NormalizeStatus(d.Status),
		ProductID:       d.ProductID,
		ProductTitle:    d.ProductTitle,
		ProductCategory: d.ProductCategory,
		ProductType:     d.ProductType,
		ProductImages:   d.ProductImages,
		ProductAddress: domaincatalog.Address{
			Street:       d.ProductAddress.Street,
			Number:       d.ProductAddress.Number,
			Neighborhood: d.ProductAddress.Neighborhood,
			City:         d.ProductAddress.City,
			State:        d.ProductAddress.State,
		},
		Institution:         domaincatalog.Contact{Email: d.Institution.Email, Phone: d.Institution.Phone},
		ProductDiscount:     d.ProductDiscount,
		Client:              domainbooking.Client{Name: d.Client.Name, Email: d.Client.Email, Phone: d.Client.Phone},
		ChargingType:        domainbooking.ParseChargingType(d.ChargingType),
		Reservations:        reservations,
		ActivityTitle:       d.ActivityTitle,
		ActivityDescription: d.ActivityDescription,
		TotalAmount:         d.TotalAmount,
		FinalAmount:         d.FinalAmount,
		PaymentDate:         timestampToTime(d.PaymentDate),
		CreatedAt:           timestampToTime(d.CreatedAt),
		UpdatedAt:           timestampToTime(d.UpdatedAt),
		Version:             d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
