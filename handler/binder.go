package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// DefaultMaxBodySize bounds JSON request bodies.
const DefaultMaxBodySize int64 = 1 << 20

// BindJSON decodes a strict JSON body into v: unknown fields and trailing
// data are rejected. An empty body on a request without Content-Type is not
// an error; the binder is skipped and v keeps its zero value.
func BindJSON(maxBytes int64) Bind {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			if r.ContentLength == 0 {
				return ErrBinderNotApplicable
			}
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %q, expected application/json", ErrWrongContentType, contentType)
		}

		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				return ErrRequestTooLarge
			case errors.Is(err, io.EOF):
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			default:
				return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}

// BindPath fills fields tagged `path:"name"` using extractor, typically
// chi.URLParam.
func BindPath(extractor func(r *http.Request, name string) string) Bind {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "path", func(name string) (string, bool) {
			value := extractor(r, name)
			return value, value != ""
		})
	}
}

// BindQuery fills fields tagged `query:"name"` from the URL query.
func BindQuery() Bind {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(v, "query", func(name string) (string, bool) {
			if !q.Has(name) {
				return "", false
			}
			return q.Get(name), true
		})
	}
}

func bindTagged(v any, tag string, lookup func(name string) (string, bool)) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidParam)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rv.NumField() {
		field := rv.Field(i)
		name := rt.Field(i).Tag.Get(tag)
		if name == "" || name == "-" || !field.CanSet() {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		var parts []string
		for p := range strings.SplitSeq(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		field.Set(reflect.ValueOf(parts).Convert(field.Type()))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
