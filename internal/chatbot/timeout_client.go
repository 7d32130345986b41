package chatbot

import (
	"context"
	"errors"
	"time"
)

// DefaultCompletionTimeout bounds a completion call when none is configured.
const DefaultCompletionTimeout = 20 * time.Second

// TimeoutClient bounds every call of the wrapped client and normalizes its
// failures into *CompletionError.
type TimeoutClient struct {
	next     LLMClient
	provider string
	timeout  time.Duration
}

func NewTimeoutClient(next LLMClient, provider string, timeout time.Duration) *TimeoutClient {
	if next == nil {
		panic("chatbot: completion client cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &TimeoutClient{next: next, provider: provider, timeout: timeout}
}

func (c *TimeoutClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.next.Complete(callCtx, req)
	if err == nil {
		return resp, nil
	}
	// The caller going away is not a provider failure.
	if ctx.Err() != nil {
		return LLMResponse{}, ctx.Err()
	}

	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	var ce *CompletionError
	if errors.As(err, &ce) {
		if timedOut && !ce.Timeout {
			dup := *ce
			dup.Timeout = true
			return LLMResponse{}, &dup
		}
		return LLMResponse{}, err
	}
	return LLMResponse{}, &CompletionError{Provider: c.provider, Timeout: timedOut, Err: err}
}
