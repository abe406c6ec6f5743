package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		Token:   "secret-token",
		BaseURL: srv.URL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestAuthAndUserAgentHeaders(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bot secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("User-Agent missing")
		}
		w.Write([]byte(`{"url":"wss://gateway.example","shards":1}`))
	}))

	info, err := c.GatewayBot(context.Background())
	if err != nil {
		t.Fatalf("GatewayBot: %v", err)
	}
	if info.URL != "wss://gateway.example" {
		t.Errorf("URL = %q", info.URL)
	}
}

func TestRetryOn429(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"retry_after":0.01,"global":false}`))
			return
		}
		w.Write([]byte(`{"id":"1","channel_id":"2","author":{"id":"3","username":"u"},"content":"ok"}`))
	}))

	msg, err := c.SendMessage(context.Background(), snowflake.New[snowflake.ChannelMarker](2), NewMessage("hi"))
	if err != nil {
		t.Fatalf("SendMessage after 429: %v", err)
	}
	if msg.Content != "ok" {
		t.Errorf("Content = %q", msg.Content)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("server saw %d calls, want 2", n)
	}
}

func TestRetriesExhausted(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"retry_after":0.001}`))
	}))

	_, err := c.Channel(context.Background(), snowflake.New[snowflake.ChannelMarker](5))
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestBucketDelaysWhenExhausted(t *testing.T) {
	var mu sync.Mutex
	var times []time.Time
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset-After", "0.05")
		w.Write([]byte(`{"id":"9","type":0}`))
	}))

	id := snowflake.New[snowflake.ChannelMarker](9)
	ctx := context.Background()
	if _, err := c.Channel(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Channel(ctx, id); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(times) != 2 {
		t.Fatalf("server saw %d calls", len(times))
	}
	if gap := times[1].Sub(times[0]); gap < 40*time.Millisecond {
		t.Errorf("second call after %v, want the bucket reset honored (>=40ms)", gap)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Missing Access","code":50001}`))
	}))

	_, err := c.Guild(context.Background(), snowflake.New[snowflake.GuildMarker](1))
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type %T, want *APIError", err)
	}
	if apiErr.Status != 403 || apiErr.Code != 50001 || apiErr.Message != "Missing Access" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestInteractionCallback204(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/interactions/77/tok-abc/callback" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body InteractionResponse
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Type != ResponseChannelMessage || body.Data.Content != "pong" {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	err := c.RespondToInteraction(context.Background(),
		snowflake.New[snowflake.InteractionMarker](77), "tok-abc", MessageResponse("pong"))
	if err != nil {
		t.Fatalf("RespondToInteraction: %v", err)
	}
}

func TestOverwriteGuildCommandsSendsFullSet(t *testing.T) {
	var gotBody []byte
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/applications/10/guilds/20/commands" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write(gotBody) // echo back, as the API does
	}))

	desired := []Command{
		{Name: "ping", Description: "latency check"},
		{Name: "roll", Description: "roll dice", Options: []CommandOption{
			{Type: OptionString, Name: "dice", Description: "NdM", Required: false},
		}},
	}
	out, err := c.OverwriteGuildCommands(context.Background(),
		snowflake.New[snowflake.ApplicationMarker](10),
		snowflake.New[snowflake.GuildMarker](20), desired)
	if err != nil {
		t.Fatalf("OverwriteGuildCommands: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("returned %d commands", len(out))
	}

	var sent []map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("body was not a JSON array: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("body had %d commands, want the complete set of 2", len(sent))
	}
	if _, hasID := sent[0]["id"]; hasID {
		t.Error("unregistered command should not carry an id")
	}
}

func TestMultipartUpload(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if pj := r.FormValue("payload_json"); pj == "" {
			t.Error("payload_json part missing")
		}
		f, hdr, err := r.FormFile("files[0]")
		if err != nil {
			t.Fatalf("files[0]: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "logo.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "png-bytes" {
			t.Errorf("file content = %q", data)
		}
		w.Write([]byte(`{"id":"1","channel_id":"2","author":{"id":"3","username":"u"},"content":""}`))
	}))

	_, err := c.SendMessageWithFiles(context.Background(),
		snowflake.New[snowflake.ChannelMarker](2),
		NewMessage("here you go"),
		[]File{{Name: "logo.png", Data: []byte("png-bytes")}})
	if err != nil {
		t.Fatalf("SendMessageWithFiles: %v", err)
	}
}
