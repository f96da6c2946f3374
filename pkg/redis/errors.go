package redis

import "errors"

var (
	ErrInvalidURL         = errors.New("redis: invalid REDIS_URL")
	ErrNotReady           = errors.New("redis: server not ready before retries ran out")
	ErrEmptyConnectionURL = errors.New("redis: REDIS_URL is empty")
	ErrHealthcheckFailed  = errors.New("redis: ledger store is not ready")
	ErrCorruptEvent       = errors.New("redis: corrupt event entry")
)
