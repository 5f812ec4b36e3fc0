package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForPing_RetriesUntilReady(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}
	if err := waitForPing(context.Background(), ping, time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestWaitForPing_GivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	err := waitForPing(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, time.Microsecond)
	if !errors.Is(err, boom) {
		t.Errorf("expected the last ping error, got %v", err)
	}
	if calls != maxPingAttempts {
		t.Errorf("expected %d attempts, got %d", maxPingAttempts, calls)
	}
}

func TestWaitForPing_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := waitForPing(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	}, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}
