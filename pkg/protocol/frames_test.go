package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeDispatchFrame(t *testing.T) {
	raw := `{"op":0,"s":42,"t":"MESSAGE_CREATE","d":{"content":"hi"}}`
	f, err := DecodeFrame([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if f.Op != OpDispatch {
		t.Errorf("Op = %v, want DISPATCH", f.Op)
	}
	if f.SeqValue() != 42 {
		t.Errorf("SeqValue = %d, want 42", f.SeqValue())
	}
	if f.Type != "MESSAGE_CREATE" {
		t.Errorf("Type = %q", f.Type)
	}
}

func TestDecodeFrameUnknownOp(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"op":99,"d":{"something":"new"}}`))
	if err != nil {
		t.Fatalf("unknown op should decode: %v", err)
	}
	if f.Op != Op(99) {
		t.Errorf("Op = %v", f.Op)
	}
	if f.SeqValue() != 0 {
		t.Errorf("SeqValue = %d, want 0 for missing s", f.SeqValue())
	}
}

func TestDecodeFrameNullSeqAndType(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"op":11,"s":null,"t":null,"d":null}`))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if f.Seq != nil {
		t.Errorf("Seq = %v, want nil", *f.Seq)
	}
	if f.Type != "" {
		t.Errorf("Type = %q, want empty", f.Type)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"op":`))
	if err == nil {
		t.Fatal("malformed JSON should error")
	}
	if f != nil {
		t.Errorf("unparseable input should yield a nil frame, got %+v", f)
	}
}

func TestDecodeFrameBadFieldKeepsRest(t *testing.T) {
	// A string where s should be an integer must not cost us the whole
	// dispatch: everything except the bad field survives.
	raw := `{"op":0,"s":"x","t":"MESSAGE_CREATE","d":{"content":"hi"}}`
	f, err := DecodeFrame([]byte(raw))
	if err == nil {
		t.Fatal("type-mismatched field should be reported")
	}
	if f == nil {
		t.Fatal("frame should survive a type-mismatched field")
	}
	if f.Op != OpDispatch {
		t.Errorf("Op = %v, want DISPATCH", f.Op)
	}
	if f.Type != "MESSAGE_CREATE" {
		t.Errorf("Type = %q", f.Type)
	}
	if f.Seq != nil {
		t.Errorf("bad s should decode as absent, got %d", *f.Seq)
	}
	var d struct {
		Content string `json:"content"`
	}
	if err := f.DecodeData(&d); err != nil || d.Content != "hi" {
		t.Errorf("payload lost: %v, content %q", err, d.Content)
	}
}

func TestNewFrameEncode(t *testing.T) {
	f, err := NewFrame(OpHeartbeat, 41)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	b, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"op":1`) || !strings.Contains(got, `"d":41`) {
		t.Errorf("encoded frame = %s", got)
	}
	if strings.Contains(got, `"s"`) || strings.Contains(got, `"t"`) {
		t.Errorf("non-dispatch frame should omit s and t: %s", got)
	}
}

func TestDecodeData(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"op":10,"d":{"heartbeat_interval":41250}}`))
	if err != nil {
		t.Fatal(err)
	}
	var hello Hello
	if err := f.DecodeData(&hello); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if hello.HeartbeatInterval != 41250 {
		t.Errorf("HeartbeatInterval = %d", hello.HeartbeatInterval)
	}
}

func TestScalarNormalizesNumbers(t *testing.T) {
	cases := []struct {
		raw  string
		want Scalar
	}{
		{`"reroll:20"`, "reroll:20"},
		{`2`, "2"},
		{`true`, "true"},
		{`-17`, "-17"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var s Scalar
		if err := json.Unmarshal([]byte(tc.raw), &s); err != nil {
			t.Errorf("unmarshal %s: %v", tc.raw, err)
			continue
		}
		if s != tc.want {
			t.Errorf("unmarshal %s = %q, want %q", tc.raw, s, tc.want)
		}
	}
}

func TestScalarRejectsComposite(t *testing.T) {
	var s Scalar
	if err := json.Unmarshal([]byte(`{"x":1}`), &s); err == nil {
		t.Error("object should not decode into a scalar")
	}
	if err := json.Unmarshal([]byte(`[1]`), &s); err == nil {
		t.Error("array should not decode into a scalar")
	}
}

func TestScalarMarshalsAsString(t *testing.T) {
	var s Scalar
	if err := json.Unmarshal([]byte(`7`), &s); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"7"` {
		t.Errorf("marshal = %s, want \"7\"", b)
	}
}
