// File: api/completion.go
// Package api defines the completion provider contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
)

// Completer turns request text into response text using the current parameters.
// Implementations own transport, credentials and timeouts.
type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string, params Params) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	return f(ctx, prompt, params)
}

// CompletionKind classifies provider failures. The relay treats all kinds the same.
type CompletionKind int

const (
	CompletionNetwork CompletionKind = iota
	CompletionMissingField
	CompletionTimeout
	CompletionCredential
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionNetwork:
		return "network"
	case CompletionMissingField:
		return "missing_field"
	case CompletionTimeout:
		return "timeout"
	case CompletionCredential:
		return "credential"
	default:
		return "unknown"
	}
}

// Sentinels matched by CompletionError.Is so callers can use errors.Is(err, ErrCompletionTimeout).
var (
	ErrCompletionNetwork      = errors.New("completion: network failure")
	ErrCompletionMissingField = errors.New("completion: response field missing")
	ErrCompletionTimeout      = errors.New("completion: timeout")
	ErrCompletionCredential   = errors.New("completion: missing credential")
)

// CompletionError is returned by Completer implementations.
type CompletionError struct {
	Kind CompletionKind
	Err  error
}

// NewCompletionError wraps err with a kind.
func NewCompletionError(kind CompletionKind, err error) *CompletionError {
	return &CompletionError{Kind: kind, Err: err}
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("completion %s error", e.Kind)
	}
	return fmt.Sprintf("completion %s error: %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *CompletionError) Is(target error) bool {
	switch target {
	case ErrCompletionNetwork:
		return e.Kind == CompletionNetwork
	case ErrCompletionMissingField:
		return e.Kind == CompletionMissingField
	case ErrCompletionTimeout:
		return e.Kind == CompletionTimeout
	case ErrCompletionCredential:
		return e.Kind == CompletionCredential
	}
	return false
}
