package gateway

import (
	"sync"
	"time"
)

// Status is the connection lifecycle state.
type Status int

const (
	StatusIdle        Status = iota // no connection, nothing in flight
	StatusConnecting                // dialing or awaiting HELLO
	StatusHandshaking               // IDENTIFY/RESUME sent, awaiting READY/RESUMED
	StatusLive                      // session established, events flowing
	StatusClosed                    // shut down, will not reconnect
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusHandshaking:
		return "handshaking"
	case StatusLive:
		return "live"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// session holds the resumable state of a gateway session. All fields are
// guarded by mu; the read loop is the only writer of seq and ackedAt, but
// the heartbeat loop and the reconnect driver read them concurrently.
type session struct {
	mu        sync.Mutex
	status    Status
	id        string
	resumeURL string
	seq       int64
	beatAt    time.Time // when the last heartbeat was sent
	ackedAt   time.Time // when the last heartbeat ACK arrived
}

func (s *session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// established records the identity handed out by READY.
func (s *session) established(id, resumeURL string) {
	s.mu.Lock()
	s.id = id
	s.resumeURL = resumeURL
	s.status = StatusLive
	s.mu.Unlock()
}

// recordSeq stores the sequence number of a dispatch frame. Sequence
// numbers only move forward; a replayed or out-of-order frame never
// rewinds the resume point.
func (s *session) recordSeq(seq int64) {
	s.mu.Lock()
	if seq > s.seq {
		s.seq = seq
	}
	s.mu.Unlock()
}

func (s *session) lastSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// canResume reports whether enough state exists to attempt a RESUME, and
// returns the session identity if so.
func (s *session) canResume() (id, resumeURL string, seq int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return "", "", 0, false
	}
	return s.id, s.resumeURL, s.seq, true
}

// invalidate discards the resumable state so the next connection performs
// a fresh IDENTIFY.
func (s *session) invalidate() {
	s.mu.Lock()
	s.id = ""
	s.resumeURL = ""
	s.seq = 0
	s.mu.Unlock()
}

// beatSent marks the moment a heartbeat went out.
func (s *session) beatSent(now time.Time) {
	s.mu.Lock()
	s.beatAt = now
	s.mu.Unlock()
}

// ackReceived marks the moment a heartbeat ACK arrived.
func (s *session) ackReceived(now time.Time) {
	s.mu.Lock()
	s.ackedAt = now
	s.mu.Unlock()
}

// zombie reports whether the last heartbeat went unacknowledged: a beat
// was sent and no ACK has arrived since. A zombied connection must be torn
// down and replaced with a fresh session, never resumed.
func (s *session) zombie() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beatAt.IsZero() {
		return false
	}
	return s.ackedAt.Before(s.beatAt)
}

// resetLiveness clears heartbeat bookkeeping for a new connection.
func (s *session) resetLiveness() {
	s.mu.Lock()
	s.beatAt = time.Time{}
	s.ackedAt = time.Time{}
	s.mu.Unlock()
}
