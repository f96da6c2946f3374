package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StreamContext is the Context of an SSE handler.
type StreamContext interface {
	Context

	// Send writes one event frame and flushes it. Empty event or id are omitted.
	Send(event, id string, data any) error

	// Comment writes a comment line, used as a keep-alive.
	Comment(text string) error
}

// SSEHandler runs for the lifetime of an event stream.
type SSEHandler func(stream StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

// SSE responds with a text/event-stream driven by h. The stream ends when h
// returns; h should return when the request context is done.
func SSE(h SSEHandler) Response {
	return sseResponse{handler: h}
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamingUnsupported, err)
	}

	return s.handler(&streamContext{Context: NewContext(w, r), w: w, rc: rc})
}

type streamContext struct {
	Context
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (c *streamContext) Send(event, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, "id: %s\n", id)
	}
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	fmt.Fprintf(&b, "data: %s\n\n", payload)

	if _, err := c.w.Write([]byte(b.String())); err != nil {
		return err
	}
	return c.rc.Flush()
}

func (c *streamContext) Comment(text string) error {
	if _, err := fmt.Fprintf(c.w, ": %s\n\n", text); err != nil {
		return err
	}
	return c.rc.Flush()
}
