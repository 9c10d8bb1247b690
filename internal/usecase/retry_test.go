package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iho/gobalance/internal/domain"
)

func TestRetryConfig_Schedule(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    300 * time.Millisecond,
	}

	t.Run("lock strategy doubles delay, capped", func(t *testing.T) {
		s := cfg.schedule(StrategyLock)

		want := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			300 * time.Millisecond,
			300 * time.Millisecond,
		}
		for i, w := range want {
			got := s.NextBackOff()
			if got != w {
				t.Errorf("delay %d: expected %v, got %v", i, w, got)
			}
		}
	})

	t.Run("optimistic strategy grows linearly, capped", func(t *testing.T) {
		s := cfg.schedule(StrategyOptimistic)

		want := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			300 * time.Millisecond,
			300 * time.Millisecond,
		}
		for i, w := range want {
			got := s.NextBackOff()
			if got != w {
				t.Errorf("delay %d: expected %v, got %v", i, w, got)
			}
		}
	})

	t.Run("token strategy delay is fixed", func(t *testing.T) {
		s := cfg.schedule(StrategyToken)

		for i := 0; i < 4; i++ {
			got := s.NextBackOff()
			if got != 100*time.Millisecond {
				t.Errorf("delay %d: expected 100ms, got %v", i, got)
			}
		}
	})

	t.Run("linear schedule resets", func(t *testing.T) {
		s := cfg.schedule(StrategyOptimistic)
		s.NextBackOff()
		s.NextBackOff()
		s.Reset()

		got := s.NextBackOff()
		if got != 100*time.Millisecond {
			t.Errorf("expected 100ms after reset, got %v", got)
		}
	})
}

func TestRetryConfig_WithDefaults(t *testing.T) {
	cfg := RetryConfig{}.withDefaults()

	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, cfg.MaxAttempts)
	}

	if cfg.BaseDelay != DefaultBaseDelay {
		t.Errorf("expected base %v, got %v", DefaultBaseDelay, cfg.BaseDelay)
	}

	if cfg.MaxDelay != DefaultMaxDelay {
		t.Errorf("expected cap %v, got %v", DefaultMaxDelay, cfg.MaxDelay)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{domain.ErrLockTimeout, true},
		{domain.ErrVersionConflict, true},
		{domain.ErrConstraintViolation, true},
		{fmt.Errorf("attempt failed: %w", domain.ErrVersionConflict), true},
		{domain.ErrInsufficientFunds, false},
		{domain.ErrBalanceNotFound, false},
		{domain.ErrInvalidAmount, false},
		{domain.ErrDuplicateToken, false},
		{errors.New("broken pipe"), false},
	}

	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRetriesExhaustedError(t *testing.T) {
	err := &RetriesExhaustedError{
		Strategy: StrategyLock,
		Attempts: 3,
		Err:      domain.ErrLockTimeout,
	}

	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Error("expected errors.Is to see the wrapped cause")
	}

	msg := err.Error()
	if msg != "lock strategy exhausted after 3 attempts: lock acquisition timed out" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSleepCtx(t *testing.T) {
	t.Run("returns after delay", func(t *testing.T) {
		err := sleepCtx(context.Background(), time.Millisecond)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("cancellation interrupts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := sleepCtx(ctx, time.Minute)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"lock", "optimistic", "token"} {
		s, err := ParseStrategy(valid)
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", valid, err)
		}

		if string(s) != valid {
			t.Errorf("ParseStrategy(%q) = %q", valid, s)
		}
	}

	_, err := ParseStrategy("pessimistic")
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestParseGuardMode(t *testing.T) {
	for _, valid := range []string{"probe", "insert-first"} {
		g, err := ParseGuardMode(valid)
		if err != nil {
			t.Errorf("ParseGuardMode(%q): %v", valid, err)
		}

		if string(g) != valid {
			t.Errorf("ParseGuardMode(%q) = %q", valid, g)
		}
	}

	_, err := ParseGuardMode("none")
	if !errors.Is(err, ErrUnknownGuardMode) {
		t.Errorf("expected ErrUnknownGuardMode, got %v", err)
	}
}
