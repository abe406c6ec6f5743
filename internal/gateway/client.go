package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// DefaultGatewayURL is the well-known gateway endpoint, used when URL
// discovery is unavailable.
const DefaultGatewayURL = "wss://gateway.discord.gg"

// gatewayQuery selects the API version and JSON encoding. Appended to
// every gateway URL, discovered or resumed.
const gatewayQuery = "v=10&encoding=json"

// maxWSMessageSize is the maximum allowed WebSocket message size (512KB).
// Gorilla/websocket closes the connection with ErrReadLimit if exceeded.
const maxWSMessageSize = 512 * 1024

const defaultHandshakeTimeout = 30 * time.Second

// URLResolver returns the websocket URL for a fresh (non-resume)
// connection, typically by asking the REST API.
type URLResolver func(ctx context.Context) (string, error)

// Options configures a gateway client.
type Options struct {
	Token   string
	Intents protocol.Intents

	// ResolveURL discovers the gateway URL for fresh connections. When
	// nil, or on discovery failure, DefaultGatewayURL is used.
	ResolveURL URLResolver

	// HandshakeTimeout bounds the wait for HELLO after the socket opens.
	HandshakeTimeout time.Duration

	Logger *slog.Logger
}

// Client maintains one gateway session across reconnects: it dials,
// performs the HELLO/IDENTIFY (or RESUME) handshake, keeps the heartbeat
// alive, and feeds dispatch events to its Dispatcher. Run blocks until the
// context is cancelled, Close is called, or a fatal close code arrives.
type Client struct {
	id         string
	token      string
	intents    protocol.Intents
	resolveURL URLResolver
	hsTimeout  time.Duration

	dispatch *Dispatcher
	session  *session
	policy   reconnectPolicy
	limiter  *sendLimiter
	log      *slog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}

	selfMu sync.Mutex
	self   protocol.User
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	intents := opts.Intents
	if intents == 0 {
		intents = protocol.DefaultIntents
	}
	hs := opts.HandshakeTimeout
	if hs <= 0 {
		hs = defaultHandshakeTimeout
	}
	return &Client{
		id:         uuid.NewString(),
		token:      opts.Token,
		intents:    intents,
		resolveURL: opts.ResolveURL,
		hsTimeout:  hs,
		dispatch:   NewDispatcher(log),
		session:    &session{},
		limiter:    newSendLimiter(),
		log:        log,
		stopCh:     make(chan struct{}),
	}
}

// Dispatcher exposes handler registration.
func (c *Client) Dispatcher() *Dispatcher { return c.dispatch }

// Status returns the current lifecycle state.
func (c *Client) Status() Status { return c.session.Status() }

// Self returns the bot user from the most recent READY.
func (c *Client) Self() protocol.User {
	c.selfMu.Lock()
	defer c.selfMu.Unlock()
	return c.self
}

// Close stops the client. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopCh)
	}
	c.mu.Unlock()
	c.closeConn()
}

// Run connects and services the session until ctx is cancelled, Close is
// called, or a fatal condition makes reconnecting pointless. Transient
// failures reconnect with exponential backoff, resuming where possible.
func (c *Client) Run(ctx context.Context) error {
	go c.dispatch.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			c.session.setStatus(StatusClosed)
			return nil
		case <-c.stopCh:
			c.session.setStatus(StatusClosed)
			return nil
		default:
		}

		err := c.runSession(ctx)
		if err == nil {
			c.session.setStatus(StatusClosed)
			return nil
		}

		switch classifyDisconnect(err) {
		case causeFatal:
			c.session.setStatus(StatusClosed)
			c.log.Error("gateway: fatal disconnect", "conn", c.id, "error", err)
			return fmt.Errorf("gateway: fatal disconnect: %w", err)
		case causeReidentify:
			c.log.Warn("gateway: session not resumable, will re-identify",
				"conn", c.id, "error", err)
			c.session.invalidate()
		default:
			c.log.Warn("gateway: disconnected, will attempt resume",
				"conn", c.id, "error", err)
		}

		delay := c.policy.nextDelay()
		c.session.setStatus(StatusIdle)
		c.log.Info("gateway: reconnecting", "conn", c.id, "delay", delay.Round(time.Millisecond))
		select {
		case <-ctx.Done():
			c.session.setStatus(StatusClosed)
			return nil
		case <-c.stopCh:
			c.session.setStatus(StatusClosed)
			return nil
		case <-time.After(delay):
		}
	}
}

// runSession performs one full connect cycle: dial, handshake, then the
// read loop until something ends the connection. A nil return means a
// clean, requested shutdown.
func (c *Client) runSession(ctx context.Context) error {
	sessionID, resumeURL, seq, resuming := c.session.canResume()

	url := resumeURL
	if url == "" {
		url = c.discoverURL(ctx)
	}
	url = withGatewayQuery(url)

	c.session.setStatus(StatusConnecting)
	c.log.Info("gateway: connecting", "conn", c.id, "url", url, "resuming", resuming)

	dialer := websocket.Dialer{HandshakeTimeout: c.hsTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resuming {
			c.noteResumeFailure()
		}
		return fmt.Errorf("gateway: dial %s: %w", url, err)
	}
	c.setConn(conn)
	defer c.closeConn()

	conn.SetReadLimit(maxWSMessageSize)

	hello, err := c.awaitHello(conn)
	if err != nil {
		if resuming {
			c.noteResumeFailure()
		}
		return err
	}
	interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
	c.log.Info("gateway: hello received", "conn", c.id,
		"heartbeat_interval", interval)

	c.session.setStatus(StatusHandshaking)
	c.session.resetLiveness()

	if resuming {
		err = c.sendResume(ctx, sessionID, seq)
	} else {
		err = c.sendIdentify(ctx)
	}
	if err != nil {
		if resuming {
			c.noteResumeFailure()
		}
		return err
	}

	// The heartbeat loop runs beside the read loop. On failure it closes
	// the connection, which unblocks the read loop; the heartbeat's error
	// then takes precedence over the resulting read error.
	done := make(chan struct{})
	defer close(done)
	fail := make(chan error, 1)
	go c.runHeartbeat(ctx, interval, done, fail)
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			c.closeConn()
		case <-c.stopCh:
			c.closeConn()
		}
	}()

	readErr := c.readLoop(ctx, conn)

	select {
	case hbErr := <-fail:
		readErr = hbErr
	default:
	}

	select {
	case <-ctx.Done():
		return nil
	case <-c.stopCh:
		return nil
	default:
	}

	if resuming && c.session.Status() != StatusLive {
		c.noteResumeFailure()
	}
	return readErr
}

// readLoop consumes frames until the connection dies or the server tells
// us to go away.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("gateway: read: %w", err)
		}
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			if f == nil {
				// A malformed frame is not worth a reconnect.
				c.log.Warn("gateway: dropping malformed frame", "conn", c.id, "error", err)
				continue
			}
			// One bad envelope field: keep the frame, lose the field.
			c.log.Warn("gateway: dropping malformed frame field",
				"conn", c.id, "op", f.Op, "event", f.Type, "error", err)
		}
		if err := c.handleFrame(ctx, f); err != nil {
			return err
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, f *protocol.Frame) error {
	switch f.Op {
	case protocol.OpDispatch:
		c.handleDispatch(f)

	case protocol.OpHeartbeat:
		// Server asked for an immediate beat.
		if err := c.sendHeartbeat(ctx); err != nil {
			return err
		}

	case protocol.OpHeartbeatACK:
		c.session.ackReceived(time.Now())

	case protocol.OpReconnect:
		return errServerReconnect

	case protocol.OpInvalidSession:
		var resumable protocol.InvalidSession
		if err := f.DecodeData(&resumable); err != nil {
			resumable = false
		}
		if resumable {
			c.log.Warn("gateway: session invalidated, resume still possible", "conn", c.id)
			return errServerReconnect
		}
		c.log.Warn("gateway: session invalidated, identify required", "conn", c.id)
		return errSessionInvalid

	case protocol.OpHello:
		// Already handled during the handshake; a second HELLO is noise.
		c.log.Debug("gateway: unexpected HELLO after handshake", "conn", c.id)

	default:
		c.log.Debug("gateway: ignoring frame", "conn", c.id, "op", f.Op)
	}
	return nil
}

func (c *Client) handleDispatch(f *protocol.Frame) {
	if seq := f.SeqValue(); seq > 0 {
		c.session.recordSeq(seq)
	}

	switch f.Type {
	case protocol.EventReady:
		var ready protocol.Ready
		if err := f.DecodeData(&ready); err != nil {
			c.log.Error("gateway: bad READY payload", "conn", c.id, "error", err)
			return
		}
		c.session.established(ready.SessionID, ready.ResumeGatewayURL)
		c.policy.reset()
		c.selfMu.Lock()
		c.self = ready.User
		c.selfMu.Unlock()
		c.log.Info("gateway: session established", "conn", c.id,
			"session_id", ready.SessionID,
			"user", ready.User.Username,
			"guilds", len(ready.Guilds))

	case protocol.EventResumed:
		c.session.setStatus(StatusLive)
		c.policy.reset()
		c.log.Info("gateway: session resumed", "conn", c.id,
			"last_seq", c.session.lastSeq())
	}

	c.dispatch.enqueue(Event{Name: f.Type, Seq: f.SeqValue(), Data: f.Data})
}

// awaitHello reads the mandatory first frame within the handshake timeout.
func (c *Client) awaitHello(conn *websocket.Conn) (*protocol.Hello, error) {
	conn.SetReadDeadline(time.Now().Add(c.hsTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("gateway: waiting for hello: %w", err)
	}
	f, err := protocol.DecodeFrame(data)
	if err != nil {
		return nil, err
	}
	if f.Op != protocol.OpHello {
		return nil, fmt.Errorf("gateway: expected HELLO, got %s", f.Op)
	}
	var hello protocol.Hello
	if err := f.DecodeData(&hello); err != nil {
		return nil, err
	}
	if hello.HeartbeatInterval <= 0 {
		return nil, fmt.Errorf("gateway: hello carried bad heartbeat interval %d", hello.HeartbeatInterval)
	}
	return &hello, nil
}

func (c *Client) sendIdentify(ctx context.Context) error {
	f, err := protocol.NewFrame(protocol.OpIdentify, protocol.Identify{
		Token: c.token,
		Properties: protocol.IdentifyProperties{
			OS:      runtime.GOOS,
			Browser: "discgate",
			Device:  "discgate",
		},
		Intents: c.intents,
	})
	if err != nil {
		return err
	}
	return c.sendFrame(ctx, f)
}

func (c *Client) sendResume(ctx context.Context, sessionID string, seq int64) error {
	c.log.Info("gateway: resuming session", "conn", c.id,
		"session_id", sessionID, "seq", seq)
	f, err := protocol.NewFrame(protocol.OpResume, protocol.Resume{
		Token:     c.token,
		SessionID: sessionID,
		Seq:       seq,
	})
	if err != nil {
		return err
	}
	return c.sendFrame(ctx, f)
}

// sendFrame serializes and writes one frame, paced by the send budget.
func (c *Client) sendFrame(ctx context.Context, f *protocol.Frame) error {
	if err := c.limiter.wait(ctx); err != nil {
		return fmt.Errorf("gateway: send budget wait: %w", err)
	}
	data, err := f.Encode()
	if err != nil {
		return err
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return errors.New("gateway: not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("gateway: write %s: %w", f.Op, err)
	}
	return nil
}

// noteResumeFailure counts a resume attempt that never reached Live. After
// enough consecutive failures the session is abandoned so the next attempt
// discovers a fresh URL and identifies from scratch.
func (c *Client) noteResumeFailure() {
	if c.policy.resumeFailed() {
		c.log.Warn("gateway: giving up on resume after repeated failures",
			"conn", c.id, "failures", c.policy.resumeFailures)
		c.session.invalidate()
	}
}

// discoverURL resolves the gateway URL for a fresh connection, falling
// back to the well-known endpoint.
func (c *Client) discoverURL(ctx context.Context) string {
	if c.resolveURL == nil {
		return DefaultGatewayURL
	}
	url, err := c.resolveURL(ctx)
	if err != nil || url == "" {
		c.log.Warn("gateway: url discovery failed, using default",
			"conn", c.id, "error", err)
		return DefaultGatewayURL
	}
	return url
}

func withGatewayQuery(url string) string {
	if strings.Contains(url, "?") {
		return url
	}
	return url + "/?" + gatewayQuery
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

func (c *Client) closeConn() {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
}
