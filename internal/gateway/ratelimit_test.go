package gateway

import (
	"context"
	"testing"
	"time"
)

func TestSendLimiterBurstThenBlocks(t *testing.T) {
	sl := newSendLimiter()
	ctx := context.Background()

	// The full budget is available up front.
	start := time.Now()
	for i := 0; i < sendBudget; i++ {
		if err := sl.wait(ctx); err != nil {
			t.Fatalf("send %d: %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("burst of %d sends took %v", sendBudget, elapsed)
	}

	// The next send has to wait for a refill, longer than we are willing
	// to sit here, so it must fail with the context deadline.
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := sl.wait(short); err == nil {
		t.Fatal("send past the budget should have blocked until the window refills")
	}
}
