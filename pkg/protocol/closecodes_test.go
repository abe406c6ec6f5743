package protocol

import "testing"

func TestCloseCodeFatal(t *testing.T) {
	fatal := []CloseCode{
		CloseAuthenticationFailed,
		CloseInvalidShard,
		CloseShardingRequired,
		CloseInvalidAPIVersion,
		CloseInvalidIntents,
		CloseDisallowedIntents,
	}
	for _, c := range fatal {
		if !c.Fatal() {
			t.Errorf("%v should be fatal", c)
		}
		if c.CanResume() {
			t.Errorf("%v is fatal and must not resume", c)
		}
	}
}

func TestCloseCodeReidentify(t *testing.T) {
	for _, c := range []CloseCode{CloseInvalidSeq, CloseSessionTimedOut} {
		if c.Fatal() {
			t.Errorf("%v should not be fatal", c)
		}
		if c.CanResume() {
			t.Errorf("%v must force a fresh identify", c)
		}
	}
}

func TestCloseCodeResumable(t *testing.T) {
	resumable := []CloseCode{
		CloseUnknownError,
		CloseUnknownOpcode,
		CloseDecodeError,
		CloseNotAuthenticated,
		CloseAlreadyAuthenticated,
		CloseRateLimited,
		CloseCode(1001), // plain websocket going-away
	}
	for _, c := range resumable {
		if !c.CanResume() {
			t.Errorf("%v should allow resume", c)
		}
	}
}

func TestDefaultIntents(t *testing.T) {
	// guilds + members + presences + guild messages + message content
	if DefaultIntents != Intents(1|2|256|512|32768) {
		t.Errorf("DefaultIntents = %d", DefaultIntents)
	}
	if !DefaultIntents.Has(IntentMessageContent) {
		t.Error("DefaultIntents should include message content")
	}
	if DefaultIntents.Has(IntentDirectMessages) {
		t.Error("DefaultIntents should not include direct messages")
	}
}
