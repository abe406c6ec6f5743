package protocol

// Intents is the bitmask sent during IDENTIFY that selects which event
// groups the gateway will push.
type Intents uint64

const (
	IntentGuilds                Intents = 1 << 0
	IntentGuildMembers          Intents = 1 << 1
	IntentGuildModeration       Intents = 1 << 2
	IntentGuildExpressions      Intents = 1 << 3
	IntentGuildIntegrations     Intents = 1 << 4
	IntentGuildWebhooks         Intents = 1 << 5
	IntentGuildInvites          Intents = 1 << 6
	IntentGuildVoiceStates      Intents = 1 << 7
	IntentGuildPresences        Intents = 1 << 8
	IntentGuildMessages         Intents = 1 << 9
	IntentGuildMessageReactions Intents = 1 << 10
	IntentGuildMessageTyping    Intents = 1 << 11
	IntentDirectMessages        Intents = 1 << 12
	IntentMessageContent        Intents = 1 << 15
)

// DefaultIntents covers guild lifecycle, member and presence tracking,
// guild messages, and message content.
const DefaultIntents = IntentGuilds |
	IntentGuildMembers |
	IntentGuildPresences |
	IntentGuildMessages |
	IntentMessageContent

// Has reports whether all bits in mask are set.
func (i Intents) Has(mask Intents) bool {
	return i&mask == mask
}
