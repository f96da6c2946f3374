package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator/pkg/requestid"
)

func serve(t *testing.T, incoming string) (seen string, echoed string) {
	t.Helper()
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	if incoming != "" {
		req.Header.Set(requestid.Header, incoming)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"absent", "", false},
		{"valid client id", "checkout-42_a", true},
		{"max length", strings.Repeat("a", 128), true},
		{"too long", strings.Repeat("a", 129), false},
		{"header injection", "abc\r\nX-Evil: 1", false},
		{"spaces", "pay 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seen, echoed := serve(t, tt.incoming)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, echoed)
			if tt.reused {
				assert.Equal(t, tt.incoming, seen)
				return
			}
			assert.NotEqual(t, tt.incoming, seen)
			parsed, err := uuid.Parse(seen)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(7), parsed.Version())
		})
	}

	t.Run("fresh id per request", func(t *testing.T) {
		t.Parallel()
		a, _ := serve(t, "")
		b, _ := serve(t, "")
		assert.NotEqual(t, a, b)
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, requestid.FromContext(nil))

	ctx := requestid.WithContext(context.Background(), "req-1")
	assert.Equal(t, "req-1", requestid.FromContext(ctx))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()
	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "req-7"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-7", attr.Value.String())
}

func TestValid(t *testing.T) {
	t.Parallel()
	assert.True(t, requestid.Valid(requestid.New()))
	assert.False(t, requestid.Valid(""))
	assert.False(t, requestid.Valid("a/b"))
}
