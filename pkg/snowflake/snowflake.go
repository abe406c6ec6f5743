// Package snowflake implements the 64-bit identifiers used across the
// gateway and REST APIs. IDs are transmitted as decimal strings but some
// payloads carry them as bare integers; decoding accepts both without ever
// routing through a float.
package snowflake

import (
	"fmt"
	"strconv"
	"time"
)

// Epoch is the identifier epoch in milliseconds since the Unix epoch
// (2015-01-01T00:00:00Z). The top 42 bits of an ID are milliseconds
// since this epoch.
const Epoch = 1420070400000

// Marker types. An ID is parameterized by one of these so that a guild ID
// cannot be passed where a channel ID is expected. Markers are never
// instantiated.
type (
	ApplicationMarker struct{}
	AttachmentMarker  struct{}
	ChannelMarker     struct{}
	CommandMarker     struct{}
	GuildMarker       struct{}
	InteractionMarker struct{}
	MessageMarker     struct{}
	RoleMarker        struct{}
	UserMarker        struct{}
)

// ID is a snowflake tagged with a marker type M. The zero value means
// "absent" and marshals as JSON null.
type ID[M any] struct {
	value uint64
}

type (
	ApplicationID = ID[ApplicationMarker]
	AttachmentID  = ID[AttachmentMarker]
	ChannelID     = ID[ChannelMarker]
	CommandID     = ID[CommandMarker]
	GuildID       = ID[GuildMarker]
	InteractionID = ID[InteractionMarker]
	MessageID     = ID[MessageMarker]
	RoleID        = ID[RoleMarker]
	UserID        = ID[UserMarker]
)

// New wraps a raw value in a typed ID.
func New[M any](v uint64) ID[M] {
	return ID[M]{value: v}
}

// Parse decodes a decimal string into a typed ID.
func Parse[M any](s string) (ID[M], error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return ID[M]{}, fmt.Errorf("snowflake: parse %q: %w", s, err)
	}
	return ID[M]{value: v}, nil
}

// Cast re-tags an ID with a different marker. Needed at the few places
// where the API reuses one ID namespace for another (e.g. the default
// channel of a guild shares the guild's ID).
func Cast[N, M any](id ID[M]) ID[N] {
	return ID[N]{value: id.value}
}

// Uint64 returns the raw value.
func (id ID[M]) Uint64() uint64 { return id.value }

// IsZero reports whether the ID is absent.
func (id ID[M]) IsZero() bool { return id.value == 0 }

// String returns the canonical decimal form, or "" for the zero ID.
func (id ID[M]) String() string {
	if id.value == 0 {
		return ""
	}
	return strconv.FormatUint(id.value, 10)
}

// Time returns the creation timestamp embedded in the ID.
func (id ID[M]) Time() time.Time {
	ms := int64(id.value>>22) + Epoch
	return time.UnixMilli(ms).UTC()
}

// MarshalJSON encodes the ID as a quoted decimal string, or null when zero.
func (id ID[M]) MarshalJSON() ([]byte, error) {
	if id.value == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + strconv.FormatUint(id.value, 10) + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string, a bare integer, or null.
// Bare integers are parsed from their literal digits so large values are
// never rounded through a float.
func (id *ID[M]) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		id.value = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		id.value = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("snowflake: decode %s: %w", string(b), err)
	}
	id.value = v
	return nil
}
