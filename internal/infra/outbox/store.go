package outbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "reservaja/internal/app/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

// Store keeps staged booking events in the booking_outbox collection so that
// event delivery survives process restarts and broker downtime.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	col := db.Collection("booking_outbox")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &Store{col: col}
}

func (s *Store) Add(ctx context.Context, rec appoutbox.Record) error {
	now := time.Now().UTC()
	doc := bson.M{
		"_id":             rec.ID,
		"name":            rec.Name,
		"aggregate_id":    rec.AggregateID,
		"payload":         rec.Payload,
		"occurred_at":     rec.OccurredAt,
		"state":           stateNew,
		"attempts":        0,
		"next_attempt_at": now,
		"created_at":      now,
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

type recordDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	AggregateID string    `bson:"aggregate_id"`
	Payload     []byte    `bson:"payload"`
	OccurredAt  time.Time `bson:"occurred_at"`
	State       string    `bson:"state"`
	Attempts    int       `bson:"attempts"`
	NextAttempt time.Time `bson:"next_attempt_at"`
	ClaimedBy   string    `bson:"claimed_by"`
	ClaimedAt   time.Time `bson:"claimed_at"`
	SentAt      time.Time `bson:"sent_at"`
	LastError   string    `bson:"last_error"`
}

// Claim atomically takes the oldest due record, so concurrent relays never
// double-send. A nil record means nothing is due.
func (s *Store) Claim(ctx context.Context, relayID string) (*ClaimedRecord, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"state":           bson.M{"$in": []string{stateNew, stateFailed}},
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": relayID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc recordDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ClaimedRecord{
		Record: appoutbox.Record{
			ID:          doc.ID,
			Name:        doc.Name,
			AggregateID: doc.AggregateID,
			Payload:     doc.Payload,
			OccurredAt:  doc.OccurredAt,
		},
		Attempts: doc.Attempts,
	}, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": stateSent, "sent_at": time.Now().UTC()}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           stateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

// ClaimedRecord is a staged record together with its delivery history.
type ClaimedRecord struct {
	Record   appoutbox.Record
	Attempts int
}

var _ appoutbox.Store = (*Store)(nil)
