package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryableErr bool

func (e retryableErr) Error() string   { return "backend said so" }
func (e retryableErr) Retryable() bool { return bool(e) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestDoWithResult_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(), "test", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, retryableErr(true)
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoWithResult_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := DoWithResult(context.Background(), fastConfig(), "test", func() (int, error) {
		calls++
		return 0, retryableErr(false)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, retryableErr(false))
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	calls := 0

	err := Do(context.Background(), cfg, "test", func() error {
		calls++
		return retryableErr(true)
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, retryableErr(true))
	assert.Contains(t, err.Error(), "after 2 retries")
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := Do(ctx, fastConfig(), "test", func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"retryable", retryableErr(true), true},
		{"not retryable", retryableErr(false), false},
		{"wrapped retryable", errors.Join(errors.New("list"), retryableErr(true)), true},
		{"network timeout", timeoutErr{}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestCalculateDelay_CapsAtMax(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateDelay(1, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(2, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(5, cfg))
}
