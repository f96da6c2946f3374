package handler

import (
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/validator"
)

const maxEventPage = 500

var knownTopics = []payvalidator.Topic{
	payvalidator.TopicRegistered,
	payvalidator.TopicValidated,
	payvalidator.TopicDeactivated,
	payvalidator.TopicExpired,
	payvalidator.TopicInsufficient,
}

// EventView is the JSON form of a contract event.
type EventView struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Invocation string          `json:"invocation"`
	Diagnostic bool            `json:"diagnostic,omitempty"`
	EmittedAt  time.Time       `json:"emitted_at"`
	Memo       string          `json:"memo,omitempty"`
	Merchant   auth.Principal  `json:"merchant,omitempty"`
	Amount     string          `json:"amount,omitempty"`
	Expected   string          `json:"expected,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func newEventView(ev ledger.Event) EventView {
	view := EventView{
		ID:         ev.ID,
		Topic:      ev.Topic,
		Invocation: ev.Invocation,
		Diagnostic: ev.Diagnostic,
		EmittedAt:  ev.EmittedAt,
	}
	n, err := payvalidator.DecodeNotification(ev)
	if err != nil {
		view.Payload = ev.Payload
		return view
	}
	view.Memo = n.Memo
	view.Merchant = n.Merchant
	view.RequestID = n.RequestID
	if n.Amount != nil {
		view.Amount = n.Amount.String()
	}
	if n.Expected != nil {
		view.Expected = n.Expected.String()
	}
	return view
}

func parseTopics(names []string) ([]payvalidator.Topic, error) {
	topics := make([]payvalidator.Topic, 0, len(names))
	var verrs validator.ValidationErrors
	for _, name := range names {
		t := payvalidator.Topic(name)
		if !slices.Contains(knownTopics, t) {
			verrs.Add(validator.ValidationError{
				Field:          "topics",
				Message:        "unknown topic " + strconv.Quote(name),
				TranslationKey: "validation.topic",
			})
			continue
		}
		topics = append(topics, t)
	}
	if !verrs.IsEmpty() {
		return nil, verrs
	}
	return topics, nil
}

// events streams contract events as SSE. With replay=true the persisted log
// from offset since is sent first; live events already replayed are skipped.
func (a *API) events(ctx Context, req EventsRequest) Response {
	topics, err := parseTopics(req.Topics)
	if err != nil {
		return Fail(errors.Join(ErrBadRequest, err))
	}
	if err := validator.Apply(validator.MinNum("since", req.Since, 0)); err != nil {
		return Fail(errors.Join(ErrBadRequest, err))
	}

	return SSE(func(stream StreamContext) error {
		sub := a.contract.Subscribe(stream, topics...)
		defer sub.Close()

		if err := stream.Comment("connected"); err != nil {
			return nil
		}

		var seen map[string]struct{}
		if req.Replay {
			if seen, err = a.replay(stream, topics, req.Since); err != nil {
				return nil
			}
		}

		ticker := time.NewTicker(a.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-stream.Done():
				return nil
			case <-ticker.C:
				if err := stream.Comment("ping"); err != nil {
					return nil
				}
			case ev, ok := <-sub.Receive():
				if !ok {
					return nil
				}
				if _, dup := seen[ev.ID]; dup {
					delete(seen, ev.ID)
					continue
				}
				if err := stream.Send(ev.Topic, ev.ID, newEventView(ev)); err != nil {
					return nil
				}
			}
		}
	})
}

// replay sends the log from offset since in pages of a.eventPage. It returns
// the IDs of the last non-empty page, used to skip live copies of the log tail.
func (a *API) replay(stream StreamContext, topics []payvalidator.Topic, since int) (map[string]struct{}, error) {
	seen := map[string]struct{}{}
	for offset := since; ; {
		page, err := a.contract.Events(stream, offset, a.eventPage)
		if err != nil {
			a.logger.ErrorContext(stream, "event replay failed", logger.Error(err))
			return nil, err
		}
		if len(page) > 0 {
			clear(seen)
		}
		for _, ev := range page {
			seen[ev.ID] = struct{}{}
			if len(topics) > 0 && !slices.Contains(topics, payvalidator.Topic(ev.Topic)) {
				continue
			}
			if err := stream.Send(ev.Topic, ev.ID, newEventView(ev)); err != nil {
				return nil, err
			}
		}
		if len(page) < a.eventPage {
			return seen, nil
		}
		offset += len(page)
	}
}

func (a *API) eventLog(ctx Context, req EventLogRequest) Response {
	if err := validator.Apply(
		validator.MinNum("offset", req.Offset, 0),
		validator.MinNum("limit", req.Limit, 0),
		validator.MaxNum("limit", req.Limit, maxEventPage),
	); err != nil {
		return Fail(errors.Join(ErrBadRequest, err))
	}
	limit := req.Limit
	if limit == 0 {
		limit = maxEventPage
	}
	events, err := a.contract.Events(ctx, req.Offset, limit)
	if err != nil {
		return Fail(err)
	}
	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, newEventView(ev))
	}
	return JSON(views)
}
