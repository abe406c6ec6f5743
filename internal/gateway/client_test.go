package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// fakeGateway is an in-process gateway that performs the HELLO handshake
// and records what the client sends.
type fakeGateway struct {
	t        *testing.T
	upgrader websocket.Upgrader

	identify chan protocol.Identify
	resume   chan protocol.Resume

	// script decides what happens after the handshake on each connection.
	script func(conn *websocket.Conn, connNum int)

	// helloInterval is the heartbeat interval advertised in HELLO, in
	// milliseconds. silent makes the fake swallow heartbeats without
	// acknowledging them.
	helloInterval int64
	silent        bool

	connNum int
	srv     *httptest.Server
	wsURL   string
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{
		t:             t,
		helloInterval: 45000,
		identify:      make(chan protocol.Identify, 4),
		resume:        make(chan protocol.Resume, 4),
	}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))
	g.wsURL = "ws" + strings.TrimPrefix(g.srv.URL, "http")
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()
	g.connNum++
	num := g.connNum

	g.writeFrame(conn, &protocol.Frame{Op: protocol.OpHello,
		Data: json.RawMessage(fmt.Sprintf(`{"heartbeat_interval":%d}`, g.helloInterval))})

	for {
		var f protocol.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		switch f.Op {
		case protocol.OpHeartbeat:
			if !g.silent {
				g.writeFrame(conn, &protocol.Frame{Op: protocol.OpHeartbeatACK})
			}
		case protocol.OpIdentify:
			var id protocol.Identify
			json.Unmarshal(f.Data, &id)
			g.identify <- id
			g.script(conn, num)
			return
		case protocol.OpResume:
			var res protocol.Resume
			json.Unmarshal(f.Data, &res)
			g.resume <- res
			g.script(conn, num)
			return
		}
	}
}

func (g *fakeGateway) writeFrame(conn *websocket.Conn, f *protocol.Frame) {
	if err := conn.WriteJSON(f); err != nil {
		g.t.Logf("fake gateway write: %v", err)
	}
}

func (g *fakeGateway) writeDispatch(conn *websocket.Conn, seq int64, event string, data string) {
	g.writeFrame(conn, &protocol.Frame{
		Op:   protocol.OpDispatch,
		Seq:  &seq,
		Type: event,
		Data: json.RawMessage(data),
	})
}

// serveUntilClosed answers heartbeats until the client goes away.
func (g *fakeGateway) serveUntilClosed(conn *websocket.Conn) {
	for {
		var f protocol.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Op == protocol.OpHeartbeat && !g.silent {
			g.writeFrame(conn, &protocol.Frame{Op: protocol.OpHeartbeatACK})
		}
	}
}

func (g *fakeGateway) close(conn *websocket.Conn, code int) {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""), time.Now().Add(time.Second))
	// Give the client a moment to read the close frame.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var f protocol.Frame
	conn.ReadJSON(&f)
}

func readyPayload(resumeURL string) string {
	return `{"v":10,"user":{"id":"42","username":"testbot","bot":true},` +
		`"session_id":"sess-1","resume_gateway_url":"` + resumeURL + `",` +
		`"application":{"id":"99"}}`
}

func TestClientIdentifyThenResume(t *testing.T) {
	if testing.Short() {
		t.Skip("reconnect backoff makes this test slow")
	}

	g := newFakeGateway(t)
	g.script = func(conn *websocket.Conn, connNum int) {
		switch connNum {
		case 1:
			// Fresh session: READY, one event, then a resumable close.
			g.writeDispatch(conn, 1, protocol.EventReady, readyPayload(g.wsURL))
			g.writeDispatch(conn, 2, protocol.EventMessageCreate,
				`{"id":"10","channel_id":"11","author":{"id":"12","username":"u"},"content":"hi"}`)
			time.Sleep(200 * time.Millisecond)
			g.close(conn, 4000)
		default:
			g.writeDispatch(conn, 3, protocol.EventResumed, `{}`)
			g.serveUntilClosed(conn)
		}
	}

	c := NewClient(Options{
		Token:  "token-x",
		Logger: testLogger(),
		ResolveURL: func(ctx context.Context) (string, error) {
			return g.wsURL, nil
		},
	})

	events := make(chan Event, 8)
	c.Dispatcher().On(protocol.EventMessageCreate, func(ctx context.Context, ev Event) {
		events <- ev
	})

	runDone := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { runDone <- c.Run(ctx) }()

	select {
	case id := <-g.identify:
		if id.Token != "token-x" {
			t.Errorf("identify token = %q", id.Token)
		}
		if id.Intents != protocol.DefaultIntents {
			t.Errorf("identify intents = %d", id.Intents)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no IDENTIFY received")
	}

	select {
	case ev := <-events:
		if ev.Seq != 2 {
			t.Errorf("event seq = %d, want 2", ev.Seq)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("MESSAGE_CREATE never reached the handler")
	}

	// After the 4000 close the client must RESUME with the session
	// identity and last sequence, not identify again.
	select {
	case res := <-g.resume:
		if res.SessionID != "sess-1" {
			t.Errorf("resume session_id = %q, want sess-1", res.SessionID)
		}
		if res.Seq != 2 {
			t.Errorf("resume seq = %d, want 2", res.Seq)
		}
		if res.Token != "token-x" {
			t.Errorf("resume token = %q", res.Token)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("no RESUME after resumable close")
	}

	waitForStatus(t, c, StatusLive)
	if got := c.Self().Username; got != "testbot" {
		t.Errorf("Self().Username = %q", got)
	}

	c.Close()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run returned %v after Close", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestClientFatalCloseStopsReconnecting(t *testing.T) {
	g := newFakeGateway(t)
	g.script = func(conn *websocket.Conn, connNum int) {
		g.close(conn, int(protocol.CloseAuthenticationFailed))
	}

	c := NewClient(Options{
		Token:  "bad-token",
		Logger: testLogger(),
		ResolveURL: func(ctx context.Context) (string, error) {
			return g.wsURL, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	select {
	case err := <-runDone:
		if err == nil {
			t.Fatal("Run should return an error on close code 4004")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run kept reconnecting after a fatal close code")
	}
	if g.connNum != 1 {
		t.Errorf("client connected %d times, want 1", g.connNum)
	}
}

func TestClientInvalidSessionReidentifies(t *testing.T) {
	if testing.Short() {
		t.Skip("reconnect backoff makes this test slow")
	}

	g := newFakeGateway(t)
	g.script = func(conn *websocket.Conn, connNum int) {
		switch connNum {
		case 1:
			g.writeDispatch(conn, 1, protocol.EventReady, readyPayload(g.wsURL))
			time.Sleep(100 * time.Millisecond)
			// Session is dead and cannot be resumed.
			g.writeFrame(conn, &protocol.Frame{Op: protocol.OpInvalidSession,
				Data: json.RawMessage(`false`)})
			g.serveUntilClosed(conn)
		default:
			g.writeDispatch(conn, 1, protocol.EventReady, readyPayload(g.wsURL))
			g.serveUntilClosed(conn)
		}
	}

	c := NewClient(Options{
		Token:  "token-x",
		Logger: testLogger(),
		ResolveURL: func(ctx context.Context) (string, error) {
			return g.wsURL, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	// First connection identifies.
	select {
	case <-g.identify:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial IDENTIFY")
	}

	// The non-resumable invalid session must produce a second IDENTIFY,
	// never a RESUME.
	select {
	case <-g.identify:
	case res := <-g.resume:
		t.Fatalf("client tried to resume dead session %q", res.SessionID)
	case <-time.After(15 * time.Second):
		t.Fatal("no re-identify after invalid session")
	}

	c.Close()
	<-runDone
}

func TestClientMissedAckForcesFreshSession(t *testing.T) {
	if testing.Short() {
		t.Skip("reconnect backoff makes this test slow")
	}

	g := newFakeGateway(t)
	// Fast heartbeats, never acknowledged: the second scheduled beat
	// finds the first unanswered and declares the connection a zombie.
	g.helloInterval = 50
	g.silent = true
	g.script = func(conn *websocket.Conn, connNum int) {
		g.writeDispatch(conn, 1, protocol.EventReady, readyPayload(g.wsURL))
		g.serveUntilClosed(conn)
	}

	c := NewClient(Options{
		Token:  "token-x",
		Logger: testLogger(),
		ResolveURL: func(ctx context.Context) (string, error) {
			return g.wsURL, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	select {
	case <-g.identify:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial IDENTIFY")
	}
	// The session reaches Live, so resume credentials exist when the
	// zombie teardown happens.
	waitForStatus(t, c, StatusLive)

	// A zombied connection must come back with a fresh IDENTIFY; a
	// RESUME would replay onto a session whose liveness is unknown.
	select {
	case <-g.identify:
	case res := <-g.resume:
		t.Fatalf("client resumed session %q after a missed heartbeat ACK", res.SessionID)
	case <-time.After(15 * time.Second):
		t.Fatal("no re-identify after missed heartbeat ACK")
	}

	c.Close()
	<-runDone
}

func waitForStatus(t *testing.T, c *Client, want Status) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if c.Status() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("status = %v, want %v", c.Status(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
