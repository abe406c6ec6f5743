// Package gateway implements the persistent gateway session: connection
// lifecycle, heartbeat cadence, the reconnect-and-resume state machine,
// and dispatch of decoded events to registered handlers.
package gateway

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// The gateway allows 120 outbound events per 60-second window. Exceeding
// it closes the connection with code 4008, so every send goes through the
// limiter, heartbeats included.
const (
	sendBudget = 120
	sendWindow = 60 * time.Second
)

// sendLimiter paces outbound frames with a token bucket sized to the
// gateway send budget.
type sendLimiter struct {
	limiter *rate.Limiter
}

func newSendLimiter() *sendLimiter {
	return &sendLimiter{
		limiter: rate.NewLimiter(rate.Every(sendWindow/sendBudget), sendBudget),
	}
}

// wait blocks until a send token is available or the context is done.
func (sl *sendLimiter) wait(ctx context.Context) error {
	return sl.limiter.Wait(ctx)
}
