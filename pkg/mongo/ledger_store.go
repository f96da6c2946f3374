package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/chainpe/payvalidator/pkg/ledger"
)

// Collection names used by LedgerStore.
const (
	EntriesCollection  = "ledger_entries"
	EventsCollection   = "ledger_events"
	CountersCollection = "ledger_counters"
)

const eventsCounter = "events"

type entryDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type eventDoc struct {
	Seq        int64     `bson:"_id"`
	ID         string    `bson:"event_id"`
	Topic      string    `bson:"topic"`
	Invocation string    `bson:"invocation"`
	Payload    string    `bson:"payload,omitempty"`
	EmittedAt  time.Time `bson:"emitted_at"`
}

type counterDoc struct {
	Seq int64 `bson:"seq"`
}

// LedgerStore implements ledger.Store on a MongoDB database. Apply runs inside
// a multi-document transaction, so the server must be a replica set.
// Events are keyed by a sequence number drawn from a counter document in the
// same transaction, which keeps the log in commit order.
type LedgerStore struct {
	client   *mongo.Client
	entries  *mongo.Collection
	events   *mongo.Collection
	counters *mongo.Collection
}

func NewLedgerStore(db *mongo.Database) *LedgerStore {
	return &LedgerStore{
		client:   db.Client(),
		entries:  db.Collection(EntriesCollection),
		events:   db.Collection(EventsCollection),
		counters: db.Collection(CountersCollection),
	}
}

func (s *LedgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ledger.ErrEmptyKey
	}
	var doc entryDoc
	err := s.entries.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (s *LedgerStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	for _, w := range cs.Writes {
		if w.Key == "" {
			return ledger.ErrEmptyKey
		}
	}

	session, err := s.client.StartSession()
	if err != nil {
		return errors.Join(ErrTransactionFailed, err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		now := time.Now().UTC()
		for _, w := range cs.Writes {
			_, err := s.entries.ReplaceOne(ctx,
				bson.D{{Key: "_id", Value: w.Key}},
				entryDoc{Key: w.Key, Value: w.Value, UpdatedAt: now},
				options.Replace().SetUpsert(true),
			)
			if err != nil {
				return nil, err
			}
		}
		if len(cs.Events) == 0 {
			return nil, nil
		}

		last, err := s.reserve(ctx, int64(len(cs.Events)))
		if err != nil {
			return nil, err
		}
		first := last - int64(len(cs.Events)) + 1

		docs := make([]eventDoc, 0, len(cs.Events))
		for i, ev := range cs.Events {
			docs = append(docs, eventDoc{
				Seq:        first + int64(i),
				ID:         ev.ID,
				Topic:      ev.Topic,
				Invocation: ev.Invocation,
				Payload:    string(ev.Payload),
				EmittedAt:  ev.EmittedAt,
			})
		}
		_, err = s.events.InsertMany(ctx, docs)
		return nil, err
	})
	if err != nil {
		return errors.Join(ErrTransactionFailed, err)
	}
	return nil
}

// reserve advances the event counter by n and returns its new value.
func (s *LedgerStore) reserve(ctx context.Context, n int64) (int64, error) {
	var doc counterDoc
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: eventsCounter}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: n}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	return doc.Seq, err
}

func (s *LedgerStore) Events(ctx context.Context, offset, limit int) ([]ledger.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(max(offset, 0)))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]ledger.Event, 0, len(docs))
	for _, d := range docs {
		ev := ledger.Event{
			ID:         d.ID,
			Topic:      d.Topic,
			Invocation: d.Invocation,
			EmittedAt:  d.EmittedAt.UTC(),
		}
		if d.Payload != "" {
			ev.Payload = []byte(d.Payload)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Healthcheck pings the primary, which Apply needs for transactions.
func (s *LedgerStore) Healthcheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
