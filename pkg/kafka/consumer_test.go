package kafka

import (
	"context"
	"errors"
	"testing"

	"servicehub/pkg/logger"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"tagged permanent", NewPermanentError("x", nil), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"other", errors.New("bad payload"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsumer_ProcessMessage(t *testing.T) {
	tests := []struct {
		name       string
		failures   []error
		maxRetries int
		wantCalls  int
		wantDLQ    int
	}{
		{"success", nil, 3, 1, 0},
		{"transient then success", []error{NewTransientError("blip", nil)}, 3, 2, 0},
		{"permanent goes to DLQ", []error{NewPermanentError("bad", nil)}, 3, 1, 1},
		{
			"retries exhausted",
			[]error{NewTransientError("a", nil), NewTransientError("b", nil), NewTransientError("c", nil)},
			2, 3, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			handler := func(ctx context.Context, msg Message) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}

			dlq := &fakeWriter{}
			c := newConsumer(nil, dlq, "events", "group", tt.maxRetries, handler, logger.Nop())

			msg := Message{Key: "k", Value: []byte("{}"), Headers: map[string]string{}}
			if err := c.processMessage(context.Background(), msg); err != nil {
				t.Fatalf("processMessage() error = %v", err)
			}

			if calls != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, tt.wantCalls)
			}
			if len(dlq.messages) != tt.wantDLQ {
				t.Errorf("DLQ messages = %d, want %d", len(dlq.messages), tt.wantDLQ)
			}
		})
	}
}
