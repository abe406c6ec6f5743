package gateway

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// firstBeatDelay picks the delay before the first heartbeat of a
// connection: uniform in [0, interval). Spreading the first beat keeps a
// fleet of reconnecting clients from thundering in lockstep.
func firstBeatDelay(interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(interval)))
}

// runHeartbeat drives the heartbeat cadence for one connection: a jittered
// first beat, then one beat per interval. Before each beat it checks that
// the previous one was acknowledged; a missed ACK means the connection is
// a zombie, so the loop reports errHeartbeatTimeout and the driver tears
// the connection down for a fresh session.
//
// The loop exits when ctx is cancelled or the connection's done channel
// closes. Any error is delivered to fail (buffered, never blocks).
func (c *Client) runHeartbeat(ctx context.Context, interval time.Duration, done <-chan struct{}, fail chan<- error) {
	timer := time.NewTimer(firstBeatDelay(interval))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-timer.C:
		}

		if c.session.zombie() {
			c.log.Warn("gateway: heartbeat not acknowledged, closing zombie connection",
				"last_seq", c.session.lastSeq())
			select {
			case fail <- errHeartbeatTimeout:
			default:
			}
			c.closeConn()
			return
		}

		if err := c.sendHeartbeat(ctx); err != nil {
			select {
			case fail <- err:
			default:
			}
			c.closeConn()
			return
		}
		timer.Reset(interval)
	}
}

// sendHeartbeat sends op 1 carrying the last seen sequence number, or an
// explicit null before the first dispatch.
func (c *Client) sendHeartbeat(ctx context.Context) error {
	f, err := protocol.NewFrame(protocol.OpHeartbeat, c.session.lastSeq())
	if err != nil {
		return err
	}
	if c.session.lastSeq() == 0 {
		f.Data = json.RawMessage("null")
	}
	if err := c.sendFrame(ctx, f); err != nil {
		return err
	}
	c.session.beatSent(time.Now())
	return nil
}
