package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestUserError(t *testing.T) {
	inner := errors.New("disk I/O error")
	err := NewUserError("failed to open the mapping database", inner)

	if got := err.Error(); got != "failed to open the mapping database: disk I/O error" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}

	// Callers wrap command errors further; As must still find the message.
	wrapped := fmt.Errorf("categorize: %w", err)
	var userErr *UserError
	if !errors.As(wrapped, &userErr) {
		t.Fatal("errors.As failed to find UserError through a wrap")
	}
	if userErr.UserMessage != "failed to open the mapping database" {
		t.Errorf("UserMessage = %q", userErr.UserMessage)
	}
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("no file uploaded yet", nil)
	if got := err.Error(); got != "no file uploaded yet" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "wrapped rate limit", err: fmt.Errorf("call failed: %w", ErrRateLimit), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "retryable marker", err: &RetryableError{Err: errors.New("503"), Retryable: true}, want: true},
		{name: "non-retryable marker", err: &RetryableError{Err: errors.New("401"), Retryable: false}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "missing config", err: ErrMissingConfig, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	LogError(errors.New("connection refused"), "HTTP server failed", Fields{"addr": ":8080"})

	out := buf.String()
	if !strings.Contains(out, "HTTP server failed") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Errorf("missing error in %q", out)
	}
	if !strings.Contains(out, "addr=:8080") {
		t.Errorf("missing field in %q", out)
	}
}
