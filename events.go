package payvalidator

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/requestid"
)

// Topic names an event kind.
type Topic string

const (
	TopicRegistered   Topic = "registered"
	TopicValidated    Topic = "validated"
	TopicDeactivated  Topic = "deactivated"
	TopicExpired      Topic = "expired"      // diagnostic
	TopicInsufficient Topic = "insufficient" // diagnostic
)

// ErrUnknownTopic is returned by DecodeNotification for foreign events.
var ErrUnknownTopic = errors.New("payvalidator.unknown_topic")

// Notification is the payload of a contract event.
type Notification struct {
	Topic      Topic
	Memo       string
	Merchant   auth.Principal
	Amount     *big.Int
	Expected   *big.Int
	RequestID  string
	Diagnostic bool
}

type notificationJSON struct {
	Memo      string         `json:"memo"`
	Merchant  auth.Principal `json:"merchant,omitempty"`
	Amount    string         `json:"amount,omitempty"`
	Expected  string         `json:"expected,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (n Notification) payload() notificationJSON {
	p := notificationJSON{
		Memo:      n.Memo,
		Merchant:  n.Merchant,
		RequestID: n.RequestID,
	}
	if n.Amount != nil {
		p.Amount = n.Amount.String()
	}
	if n.Expected != nil {
		p.Expected = n.Expected.String()
	}
	return p
}

// DecodeNotification reads the notification carried by a ledger event.
func DecodeNotification(ev ledger.Event) (Notification, error) {
	switch Topic(ev.Topic) {
	case TopicRegistered, TopicValidated, TopicDeactivated, TopicExpired, TopicInsufficient:
	default:
		return Notification{}, ErrUnknownTopic
	}

	var p notificationJSON
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return Notification{}, errors.Join(ledger.ErrEncoding, err)
	}
	n := Notification{
		Topic:      Topic(ev.Topic),
		Memo:       p.Memo,
		Merchant:   p.Merchant,
		RequestID:  p.RequestID,
		Diagnostic: ev.Diagnostic,
	}
	var err error
	if n.Amount, err = parseOptionalInt(p.Amount); err != nil {
		return Notification{}, err
	}
	if n.Expected, err = parseOptionalInt(p.Expected); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func parseOptionalInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Join(ledger.ErrEncoding, errors.New("malformed integer "+s))
	}
	return v, nil
}

// emit records a contract event, persisted with the invocation's commit.
func emit(ctx context.Context, tx *ledger.Tx, n Notification) error {
	n.RequestID = requestid.FromContext(ctx)
	return tx.Emit(string(n.Topic), n.payload())
}

// emitDiagnostic records an event that reaches live subscribers even when the
// invocation is rejected.
func emitDiagnostic(ctx context.Context, tx *ledger.Tx, n Notification) error {
	n.RequestID = requestid.FromContext(ctx)
	return tx.EmitDiagnostic(string(n.Topic), n.payload())
}
