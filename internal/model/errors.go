package model

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned when the provider has no observations for a symbol.
var ErrEmptyResult = errors.New("empty result")

// ProviderError is a network, auth or remote failure reported by a data provider.
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedDateError reports an observation whose date is missing or unparseable.
type MalformedDateError struct {
	Index int
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed date at row %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("malformed date %q at row %d: %v", e.Value, e.Index, e.Err)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

// IOError is a persistence failure for a series key.
type IOError struct {
	Key string
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
