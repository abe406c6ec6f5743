package protocol

import "github.com/nextlevelbuilder/discgate/pkg/snowflake"

// Hello is the op 10 payload, the first frame the server sends.
type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"` // milliseconds
}

// IdentifyProperties describes the connecting client.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Identify is the op 2 payload that starts a fresh session.
type Identify struct {
	Token      string             `json:"token"`
	Properties IdentifyProperties `json:"properties"`
	Intents    Intents            `json:"intents"`
}

// Resume is the op 6 payload that continues a prior session from the last
// acknowledged sequence.
type Resume struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

// Ready is the READY dispatch payload. ResumeGatewayURL is where any later
// RESUME for this session must be sent.
type Ready struct {
	Version          int                `json:"v"`
	User             User               `json:"user"`
	SessionID        string             `json:"session_id"`
	ResumeGatewayURL string             `json:"resume_gateway_url"`
	Application      ReadyApplication   `json:"application"`
	Guilds           []UnavailableGuild `json:"guilds,omitempty"`
}

// ReadyApplication is the partial application object inside READY.
type ReadyApplication struct {
	ID    snowflake.ApplicationID `json:"id"`
	Flags int64                   `json:"flags,omitempty"`
}

// UnavailableGuild is the stub guild entry listed in READY before the full
// GUILD_CREATE events arrive.
type UnavailableGuild struct {
	ID          snowflake.GuildID `json:"id"`
	Unavailable bool              `json:"unavailable"`
}

// InvalidSession is the op 9 payload: a bare boolean indicating whether
// the session may still be resumed.
type InvalidSession bool

// GuildCreate is the GUILD_CREATE dispatch payload: the guild plus the
// state the gateway only sends on this event.
type GuildCreate struct {
	Guild
	Channels []Channel `json:"channels,omitempty"`
}

// PresenceUpdate is the PRESENCE_UPDATE dispatch payload. The nested user
// object is partial; only the id is guaranteed.
type PresenceUpdate struct {
	User    User              `json:"user"`
	GuildID snowflake.GuildID `json:"guild_id,omitempty"`
	Status  string            `json:"status,omitempty"`
}
