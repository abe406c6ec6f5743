package protocol

import (
	"time"

	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// User is a platform account.
type User struct {
	ID            snowflake.UserID `json:"id"`
	Username      string           `json:"username"`
	Discriminator string           `json:"discriminator,omitempty"`
	GlobalName    string           `json:"global_name,omitempty"`
	Bot           bool             `json:"bot,omitempty"`
	Avatar        string           `json:"avatar,omitempty"`
}

// DisplayName returns the global display name, falling back to the
// username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Mention returns the chat mention form of the user.
func (u User) Mention() string {
	return "<@" + u.ID.String() + ">"
}

// Member is a user's guild-scoped profile. User is absent in some
// contexts (e.g. MESSAGE_CREATE carries it on the message instead).
type Member struct {
	User     *User              `json:"user,omitempty"`
	Nick     string             `json:"nick,omitempty"`
	Roles    []snowflake.RoleID `json:"roles,omitempty"`
	JoinedAt time.Time          `json:"joined_at,omitzero"`
}

// Guild is a server.
type Guild struct {
	ID              snowflake.GuildID `json:"id"`
	Name            string            `json:"name"`
	OwnerID         snowflake.UserID  `json:"owner_id,omitempty"`
	MemberCount     int               `json:"member_count,omitempty"`
	ApproxMembers   int               `json:"approximate_member_count,omitempty"`
	ApproxPresences int               `json:"approximate_presence_count,omitempty"`
	Description     string            `json:"description,omitempty"`
}

// Channel types, as carried in the type field of a channel object.
const (
	ChannelGuildText  = 0
	ChannelDM         = 1
	ChannelGuildVoice = 2
)

// Channel is a guild channel or DM.
type Channel struct {
	ID      snowflake.ChannelID `json:"id"`
	Type    int                 `json:"type"`
	GuildID snowflake.GuildID   `json:"guild_id,omitempty"`
	Name    string              `json:"name,omitempty"`
	Topic   string              `json:"topic,omitempty"`
}

// Message is a chat message as delivered by MESSAGE_CREATE or the REST
// API.
type Message struct {
	ID              snowflake.MessageID `json:"id"`
	ChannelID       snowflake.ChannelID `json:"channel_id"`
	GuildID         snowflake.GuildID   `json:"guild_id,omitempty"`
	Author          User                `json:"author"`
	Member          *Member             `json:"member,omitempty"`
	Content         string              `json:"content"`
	Timestamp       time.Time           `json:"timestamp,omitzero"`
	EditedTimestamp *time.Time          `json:"edited_timestamp,omitempty"`
	Attachments     []Attachment        `json:"attachments,omitempty"`
	Embeds          []Embed             `json:"embeds,omitempty"`
	Mentions        []User              `json:"mentions,omitempty"`
	Reference       *MessageReference   `json:"message_reference,omitempty"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          snowflake.AttachmentID `json:"id"`
	Filename    string                 `json:"filename"`
	Size        int64                  `json:"size"`
	URL         string                 `json:"url"`
	ContentType string                 `json:"content_type,omitempty"`
}

// MessageReference points at the message being replied to.
type MessageReference struct {
	MessageID snowflake.MessageID `json:"message_id,omitempty"`
	ChannelID snowflake.ChannelID `json:"channel_id,omitempty"`
	GuildID   snowflake.GuildID   `json:"guild_id,omitempty"`
}
