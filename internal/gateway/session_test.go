package gateway

import (
	"testing"
	"time"
)

func TestSessionRecordSeqMonotonic(t *testing.T) {
	s := &session{}
	s.recordSeq(5)
	s.recordSeq(9)
	s.recordSeq(7) // replayed frame must not rewind the resume point
	if got := s.lastSeq(); got != 9 {
		t.Errorf("lastSeq = %d, want 9", got)
	}
}

func TestSessionCanResume(t *testing.T) {
	s := &session{}
	if _, _, _, ok := s.canResume(); ok {
		t.Error("empty session should not be resumable")
	}

	s.established("abc123", "wss://resume.example")
	s.recordSeq(42)
	id, url, seq, ok := s.canResume()
	if !ok {
		t.Fatal("established session should be resumable")
	}
	if id != "abc123" || url != "wss://resume.example" || seq != 42 {
		t.Errorf("canResume = (%q, %q, %d)", id, url, seq)
	}

	s.invalidate()
	if _, _, _, ok := s.canResume(); ok {
		t.Error("invalidated session should not be resumable")
	}
	if s.lastSeq() != 0 {
		t.Errorf("invalidate should clear seq, got %d", s.lastSeq())
	}
}

func TestSessionZombieDetection(t *testing.T) {
	s := &session{}
	if s.zombie() {
		t.Error("fresh session is not a zombie")
	}

	now := time.Now()
	s.beatSent(now)
	if !s.zombie() {
		t.Error("beat without ack means zombie")
	}

	s.ackReceived(now.Add(time.Second))
	if s.zombie() {
		t.Error("acked beat is not a zombie")
	}

	s.beatSent(now.Add(2 * time.Second))
	if !s.zombie() {
		t.Error("new beat after old ack means zombie again")
	}

	s.resetLiveness()
	if s.zombie() {
		t.Error("resetLiveness should clear zombie state")
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	s := &session{}
	if s.Status() != StatusIdle {
		t.Errorf("zero status = %v, want idle", s.Status())
	}
	s.setStatus(StatusConnecting)
	s.established("id", "url")
	if s.Status() != StatusLive {
		t.Errorf("established should set Live, got %v", s.Status())
	}
}

func TestDedupeCache(t *testing.T) {
	c := newDedupeCache(time.Minute)
	if c.check("MESSAGE_CREATE", 10) {
		t.Error("first sighting should not be a duplicate")
	}
	if !c.check("MESSAGE_CREATE", 10) {
		t.Error("second sighting should be a duplicate")
	}
	if c.check("MESSAGE_CREATE", 11) {
		t.Error("different seq is not a duplicate")
	}
	if c.check("INTERACTION_CREATE", 10) {
		t.Error("different event with same seq is not a duplicate")
	}
	if c.check("TYPING_START", 0) || c.check("TYPING_START", 0) {
		t.Error("seq 0 events are never deduped")
	}
}

func TestDedupeCacheExpiry(t *testing.T) {
	c := newDedupeCache(10 * time.Millisecond)
	c.check("MESSAGE_CREATE", 1)
	time.Sleep(20 * time.Millisecond)
	if c.check("MESSAGE_CREATE", 1) {
		t.Error("expired entry should not count as duplicate")
	}
}

func TestFirstBeatDelayRange(t *testing.T) {
	interval := 41250 * time.Millisecond
	for i := 0; i < 500; i++ {
		d := firstBeatDelay(interval)
		if d < 0 || d >= interval {
			t.Fatalf("first beat delay %v outside [0, %v)", d, interval)
		}
	}
	if firstBeatDelay(0) != 0 {
		t.Error("zero interval should produce zero delay")
	}
}
