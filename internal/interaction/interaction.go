// Package interaction decodes INTERACTION_CREATE payloads into a closed
// set of variants. Decoding is permissive: an interaction type this
// version does not know still decodes, as KindUnknown, so new platform
// features never break the event loop.
package interaction

import (
	"encoding/json"
	"fmt"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// Wire values of the interaction type field.
const (
	typePing               = 1
	typeApplicationCommand = 2
	typeMessageComponent   = 3
	typeAutocomplete       = 4
	typeModalSubmit        = 5
)

// Kind is the decoded interaction variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommand
	KindComponent
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindComponent:
		return "component"
	case KindModal:
		return "modal"
	}
	return "unknown"
}

// Interaction is a decoded INTERACTION_CREATE. Exactly one of Command,
// Component, Modal is non-nil, matching Kind; for KindUnknown all three
// are nil and RawType/RawData preserve what arrived.
type Interaction struct {
	ID            snowflake.InteractionID
	ApplicationID snowflake.ApplicationID
	Token         string
	Kind          Kind

	GuildID   snowflake.GuildID
	ChannelID snowflake.ChannelID
	Member    *protocol.Member
	User      *protocol.User
	Message   *protocol.Message

	Command   *CommandData
	Component *ComponentData
	Modal     *ModalData

	RawType int
	RawData json.RawMessage
}

// CommandData is the payload of a slash command invocation.
type CommandData struct {
	ID      snowflake.CommandID `json:"id"`
	Name    string              `json:"name"`
	Options []CommandOption     `json:"options"`
}

// CommandOption is one supplied argument. Value tolerates numbers and
// booleans on the wire.
type CommandOption struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   protocol.Scalar `json:"value"`
	Options []CommandOption `json:"options"`
}

// ComponentData is the payload of a button press or select choice.
type ComponentData struct {
	CustomID      protocol.Scalar `json:"custom_id"`
	ComponentType int             `json:"component_type"`
	Values        []string        `json:"values"`
}

// ModalData is the payload of a submitted modal.
type ModalData struct {
	CustomID   protocol.Scalar      `json:"custom_id"`
	Components []protocol.Component `json:"components"`
}

type wireInteraction struct {
	ID            snowflake.InteractionID `json:"id"`
	ApplicationID snowflake.ApplicationID `json:"application_id"`
	Type          int                     `json:"type"`
	Data          json.RawMessage         `json:"data"`
	GuildID       snowflake.GuildID       `json:"guild_id"`
	ChannelID     snowflake.ChannelID     `json:"channel_id"`
	Member        *protocol.Member        `json:"member"`
	User          *protocol.User          `json:"user"`
	Token         string                  `json:"token"`
	Message       *protocol.Message       `json:"message"`
}

// Decode parses a raw INTERACTION_CREATE payload. Only malformed JSON is
// an error; unknown interaction types come back as KindUnknown.
func Decode(raw json.RawMessage) (*Interaction, error) {
	var w wireInteraction
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("interaction: decode envelope: %w", err)
	}

	in := &Interaction{
		ID:            w.ID,
		ApplicationID: w.ApplicationID,
		Token:         w.Token,
		GuildID:       w.GuildID,
		ChannelID:     w.ChannelID,
		Member:        w.Member,
		User:          w.User,
		Message:       w.Message,
		RawType:       w.Type,
		RawData:       w.Data,
	}

	payload := w.Data
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	switch w.Type {
	case typeApplicationCommand:
		var data CommandData
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("interaction: decode command data: %w", err)
		}
		in.Kind = KindCommand
		in.Command = &data
	case typeMessageComponent:
		var data ComponentData
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("interaction: decode component data: %w", err)
		}
		in.Kind = KindComponent
		in.Component = &data
	case typeModalSubmit:
		var data ModalData
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("interaction: decode modal data: %w", err)
		}
		in.Kind = KindModal
		in.Modal = &data
	default:
		in.Kind = KindUnknown
	}
	return in, nil
}

// Invoker returns the user behind the interaction, whether it arrived
// from a guild (member) or a DM (user).
func (in *Interaction) Invoker() *protocol.User {
	if in.Member != nil && in.Member.User != nil {
		return in.Member.User
	}
	return in.User
}
