package protocol

import "strconv"

// Op is a gateway operation code. Unknown values decode fine and are
// ignored by the session driver.
type Op int

const (
	OpDispatch            Op = 0  // server: an event, carries s and t
	OpHeartbeat           Op = 1  // both: keepalive, client echoes last seq
	OpIdentify            Op = 2  // client: start a fresh session
	OpPresenceUpdate      Op = 3  // client
	OpVoiceStateUpdate    Op = 4  // client
	OpResume              Op = 6  // client: resume a prior session
	OpReconnect           Op = 7  // server: reconnect and resume
	OpRequestGuildMembers Op = 8  // client
	OpInvalidSession      Op = 9  // server: session invalidated, d = resumable bool
	OpHello               Op = 10 // server: first frame, heartbeat interval
	OpHeartbeatACK        Op = 11 // server: heartbeat acknowledged
)

var opNames = map[Op]string{
	OpDispatch:            "DISPATCH",
	OpHeartbeat:           "HEARTBEAT",
	OpIdentify:            "IDENTIFY",
	OpPresenceUpdate:      "PRESENCE_UPDATE",
	OpVoiceStateUpdate:    "VOICE_STATE_UPDATE",
	OpResume:              "RESUME",
	OpReconnect:           "RECONNECT",
	OpRequestGuildMembers: "REQUEST_GUILD_MEMBERS",
	OpInvalidSession:      "INVALID_SESSION",
	OpHello:               "HELLO",
	OpHeartbeatACK:        "HEARTBEAT_ACK",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "OP_" + strconv.Itoa(int(o))
}
