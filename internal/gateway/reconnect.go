package gateway

import (
	"errors"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// Disconnect causes, in order of increasing severity.
const (
	causeResume     = iota // try to RESUME the session
	causeReidentify        // discard the session, fresh IDENTIFY
	causeFatal             // stop reconnecting entirely
)

// errServerReconnect is returned by the read loop when the server sends
// op 7 (RECONNECT).
var errServerReconnect = errors.New("gateway: server requested reconnect")

// errSessionInvalid is returned when op 9 arrives with resumable=false.
var errSessionInvalid = errors.New("gateway: session invalidated")

// errHeartbeatTimeout is returned when a heartbeat goes unacknowledged.
// Zombied connections get a fresh session, never a resume.
var errHeartbeatTimeout = errors.New("gateway: heartbeat not acknowledged")

// classifyDisconnect maps a read-loop error to a reconnect cause.
func classifyDisconnect(err error) int {
	if errors.Is(err, errHeartbeatTimeout) || errors.Is(err, errSessionInvalid) {
		return causeReidentify
	}
	if errors.Is(err, errServerReconnect) {
		return causeResume
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		code := protocol.CloseCode(closeErr.Code)
		if code.Fatal() {
			return causeFatal
		}
		if !code.CanResume() {
			return causeReidentify
		}
	}
	// Network-level failures: the session may still be valid server-side.
	return causeResume
}

// maxResumeFailures is how many consecutive failed resume attempts are
// tolerated before forcing a fresh identify against a freshly discovered
// gateway URL. The resume endpoint itself may be what is broken.
const maxResumeFailures = 3

const (
	backoffBase = 2 * time.Second
	backoffMax  = 60 * time.Second
)

// reconnectPolicy tracks consecutive connection attempts and resume
// failures. It is only touched by the driver goroutine.
type reconnectPolicy struct {
	attempt        int
	resumeFailures int
}

// nextDelay returns the backoff before the next connection attempt and
// advances the attempt counter. Exponential with ±25% jitter, capped.
func (p *reconnectPolicy) nextDelay() time.Duration {
	d := backoffDelay(backoffBase, backoffMax, p.attempt)
	p.attempt++
	return d
}

// reset clears the attempt counter. Called only when a session reaches
// Live, not on a mere socket connect.
func (p *reconnectPolicy) reset() {
	p.attempt = 0
	p.resumeFailures = 0
}

// resumeFailed records a resume attempt that did not reach Live and
// reports whether the session should be abandoned for a fresh identify.
func (p *reconnectPolicy) resumeFailed() bool {
	p.resumeFailures++
	return p.resumeFailures >= maxResumeFailures
}

// backoffDelay computes base<<attempt capped at max, with ±25% jitter.
// The cap applies after jitter too.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := base << uint(attempt)
	if d > max || d <= 0 {
		d = max
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2+1)) - d/4
	d += jitter
	if d > max {
		d = max
	}
	if d < 0 {
		d = 0
	}
	return d
}
