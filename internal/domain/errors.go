package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSymbolNotFound  = errors.New("symbol not returned by upstream")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

func invalidSnapshot(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, reason)
}

// InvalidSymbolError means the upstream rejected the request input (4xx). Not retried.
type InvalidSymbolError struct {
	Symbols    []string
	StatusCode int
	Body       string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol or unsupported currency [%s]: %s", strings.Join(e.Symbols, ","), e.Body)
}

// UpstreamUnavailableError means the upstream failed (5xx, 429 or transport). Callers may retry.
type UpstreamUnavailableError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Err != nil {
		return "coingecko api error: " + e.Err.Error()
	}
	return fmt.Sprintf("coingecko api error (status %d): %s", e.StatusCode, e.Body)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// CacheCodecError is a corrupt cached payload or a failed encode. Always recovered locally.
type CacheCodecError struct {
	Key string
	Err error
}

func (e *CacheCodecError) Error() string {
	return fmt.Sprintf("cache codec %s: %v", e.Key, e.Err)
}

func (e *CacheCodecError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed durable store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
