package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "timeout", err: ErrTimeout, want: true},
		{name: "wrapped timeout", err: fmt.Errorf("invoking: %w", ErrTimeout), want: true},
		{name: "connection reset", err: ErrConnectionReset, want: true},
		{name: "unavailable", err: ErrUnavailable, want: true},
		{name: "context deadline", err: context.DeadlineExceeded, want: true},
		{name: "rejected", err: ErrRejected, want: false},
		{name: "unknown device", err: ErrUnknownDevice, want: false},
		{name: "unknown primitive", err: ErrUnknownPrimitive, want: false},
		{name: "arbitrary error", err: errors.New("boom"), want: false},
		{name: "context cancelled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
