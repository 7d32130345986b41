package chatbot

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned for a chat turn with no message text.
var ErrEmptyMessage = errors.New("chatbot: message is required")

// CompletionError reports a failed completion call. The turn handler replaces
// the reply with the fallback envelope when it sees one.
type CompletionError struct {
	Provider   string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *CompletionError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("chatbot: %s completion timed out: %v", e.Provider, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("chatbot: %s completion failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("chatbot: %s completion failed: %v", e.Provider, e.Err)
	}
}

func (e *CompletionError) Unwrap() error { return e.Err }

// IsCompletionError reports whether err is or wraps a *CompletionError.
func IsCompletionError(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce)
}

// FetchError reports a failed knowledge or config fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("chatbot: fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchResult holds either a fetched value or the error that replaced it.
type FetchResult[T any] struct {
	Value T
	Err   *FetchError
}

// OK reports whether the fetch succeeded.
func (r FetchResult[T]) OK() bool { return r.Err == nil }

// OrDefault returns the fetched value, or def when the fetch failed.
func (r FetchResult[T]) OrDefault(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

func fetched[T any](source string, v T, err error) FetchResult[T] {
	if err != nil {
		return FetchResult[T]{Err: &FetchError{Source: source, Err: err}}
	}
	return FetchResult[T]{Value: v}
}
