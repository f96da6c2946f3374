package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. ContractCode is set when the
// failure came from the validator contract.
type ErrorDetail struct {
	Code         string              `json:"code"`
	ContractCode int                 `json:"contract_code,omitempty"`
	Message      string              `json:"message"`
	Details      map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   Envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithStatus sets the HTTP status code.
func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// JSON wraps v in the data envelope with status 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: Envelope{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders detail in the error envelope.
func JSONError(status int, detail ErrorDetail) Response {
	return &jsonResponse{status: status, body: Envelope{Error: &detail}}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

type blobResponse struct {
	contentType string
	body        []byte
	maxAge      int
}

func (b blobResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", b.contentType)
	if b.maxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+itoa(b.maxAge))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(b.body)
	return err
}

// PNG responds with an image/png body.
func PNG(body []byte, maxAge int) Response {
	return blobResponse{contentType: "image/png", body: body, maxAge: maxAge}
}
