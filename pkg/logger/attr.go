package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Memo records a payment session memo under the key "memo".
func Memo(memo string) slog.Attr {
	return slog.String("memo", memo)
}

// Principal records an account address under the key "principal".
// Empty values produce an empty Attr.
func Principal(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("principal", p)
}

// Merchant records the merchant address under the key "merchant".
func Merchant(p string) slog.Attr {
	return slog.String("merchant", p)
}

// Amount records an amount in base units under the key "amount".
// A nil amount produces an empty Attr.
func Amount(v interface{ String() string }) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.String("amount", v.String())
}

// Topic records an event topic under the key "topic".
func Topic(topic string) slog.Attr {
	return slog.String("topic", topic)
}

// Invocation records the contract operation name under the key "invocation".
func Invocation(name string) slog.Attr {
	return slog.String("invocation", name)
}

// Code records a numeric error code under the key "code".
func Code(code int) slog.Attr {
	return slog.Int("code", code)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Handler records the handler name under the key "handler".
func Handler(name string) slog.Attr {
	return slog.String("handler", name)
}
