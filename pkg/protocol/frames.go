// Package protocol defines the gateway wire format: the JSON frame
// envelope, operation codes, close-code classification, intents, and the
// payload types exchanged during the session handshake. This package is
// importable by tooling that needs to speak the wire format directly.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame is the envelope every gateway message travels in. Seq and Type are
// only present on DISPATCH frames; Data holds the op-specific payload and
// stays raw until the receiver knows what to decode it as.
type Frame struct {
	Op   Op              `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Type string          `json:"t,omitempty"`
}

// DecodeFrame parses a raw gateway message. Unknown ops and event types
// are not errors; callers decide what to ignore.
//
// A type-mismatched envelope field spoils only itself: the decoder fills
// the remaining fields past the error, so the frame is returned with the
// bad field zeroed, alongside an error describing it. Only unparseable
// JSON yields a nil frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &f, fmt.Errorf("protocol: frame field %q: %w", typeErr.Field, err)
		}
		return nil, fmt.Errorf("protocol: decode frame: %w", err)
	}
	return &f, nil
}

// NewFrame builds an outbound frame with the given op and payload.
// A nil payload produces "d": null, which the heartbeat op uses for
// the pre-session beat.
func NewFrame(op Op, payload any) (*Frame, error) {
	f := &Frame{Op: op}
	if payload != nil {
		d, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s payload: %w", op, err)
		}
		f.Data = d
	}
	return f, nil
}

// Encode serializes the frame for the wire.
func (f *Frame) Encode() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode frame: %w", err)
	}
	return b, nil
}

// DecodeData unmarshals the frame payload into v.
func (f *Frame) DecodeData(v any) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("protocol: %s frame has no payload", f.Op)
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", f.Op, err)
	}
	return nil
}

// SeqValue returns the dispatch sequence number, or 0 when absent.
func (f *Frame) SeqValue() int64 {
	if f.Seq == nil {
		return 0
	}
	return *f.Seq
}
