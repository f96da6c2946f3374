package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/chainpe/payvalidator/pkg/broadcast"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
)

// Source is a live feed of ledger events. *ledger.Host satisfies it.
type Source interface {
	Subscribe(ctx context.Context, filters ...broadcast.Filter[ledger.Event]) broadcast.Subscriber[ledger.Event]
}

// Document is the shape of an indexed event.
type Document struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Invocation string          `json:"invocation"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Diagnostic bool            `json:"diagnostic"`
	EmittedAt  time.Time       `json:"emitted_at"`
	IndexedAt  time.Time       `json:"indexed_at"`
}

// Indexer copies ledger events into an OpenSearch index so they can be
// searched after the live subscription is gone. Diagnostic events are
// indexed too; they are the only durable record of rejected validations.
type Indexer struct {
	client *opensearch.Client
	index  string
	logger *slog.Logger
	now    func() time.Time
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithIndex sets the target index name.
func WithIndex(name string) IndexerOption {
	return func(ix *Indexer) {
		if name != "" {
			ix.index = name
		}
	}
}

// WithIndexerLogger sets the logger for index failures.
func WithIndexerLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

func NewIndexer(client *opensearch.Client, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		client: client,
		index:  "payvalidator-events",
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.logger = ix.logger.With(logger.Component("indexer"))
	return ix
}

// Index stores one event, using the event id as the document id so that
// redelivery overwrites instead of duplicating.
func (ix *Indexer) Index(ctx context.Context, ev ledger.Event) error {
	body, err := json.Marshal(Document{
		ID:         ev.ID,
		Topic:      ev.Topic,
		Invocation: ev.Invocation,
		Payload:    ev.Payload,
		Diagnostic: ev.Diagnostic,
		EmittedAt:  ev.EmittedAt,
		IndexedAt:  ix.now(),
	})
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}

	req := opensearchapi.IndexRequest{
		Index:      ix.index,
		DocumentID: ev.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.Join(ErrIndexFailed, fmt.Errorf("status %s: %s", res.Status(), msg))
	}
	return nil
}

// Run subscribes to src and indexes every event until ctx is cancelled or the
// feed closes. Index failures are logged and do not stop the loop.
func (ix *Indexer) Run(ctx context.Context, src Source) error {
	sub := src.Subscribe(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Receive():
			if !ok {
				if n := sub.Dropped(); n > 0 {
					ix.logger.WarnContext(ctx, "events dropped before indexing", slog.Uint64("dropped", n))
				}
				return nil
			}
			if err := ix.Index(ctx, ev); err != nil {
				ix.logger.ErrorContext(ctx, "failed to index event",
					logger.Topic(ev.Topic),
					slog.String("event_id", ev.ID),
					logger.Error(err),
				)
			}
		}
	}
}
