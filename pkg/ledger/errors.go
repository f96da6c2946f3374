package ledger

import "errors"

var (
	// ErrNotFound is returned by Store.Get when the key holds no value.
	ErrNotFound = errors.New("ledger.not_found")

	// ErrCommitFailed wraps store failures while applying a change set.
	ErrCommitFailed = errors.New("ledger.commit_failed")

	// ErrEncoding wraps JSON failures while (de)serializing values or events.
	ErrEncoding = errors.New("ledger.encoding_failed")

	// ErrEmptyKey is returned when a write targets an empty key.
	ErrEmptyKey = errors.New("ledger.empty_key")

	// ErrHostClosed is returned by Invoke after Close.
	ErrHostClosed = errors.New("ledger.host_closed")
)
