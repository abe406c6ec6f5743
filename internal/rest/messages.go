package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// CreateMessage is the body of POST /channels/{id}/messages.
type CreateMessage struct {
	Content    string                     `json:"content,omitempty"`
	Embeds     []protocol.Embed           `json:"embeds,omitempty"`
	Reference  *protocol.MessageReference `json:"message_reference,omitempty"`
	Components []protocol.Component       `json:"components,omitempty"`
}

// NewMessage starts a message with plain text content.
func NewMessage(content string) *CreateMessage {
	return &CreateMessage{Content: content}
}

func (m *CreateMessage) WithEmbed(e *protocol.Embed) *CreateMessage {
	m.Embeds = append(m.Embeds, *e)
	return m
}

// InReplyTo attaches a reply reference.
func (m *CreateMessage) InReplyTo(channelID snowflake.ChannelID, messageID snowflake.MessageID) *CreateMessage {
	m.Reference = &protocol.MessageReference{ChannelID: channelID, MessageID: messageID}
	return m
}

func (m *CreateMessage) WithComponents(rows ...protocol.Component) *CreateMessage {
	m.Components = append(m.Components, rows...)
	return m
}

// SendMessage posts a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID snowflake.ChannelID, msg *CreateMessage) (*protocol.Message, error) {
	var out protocol.Message
	path := "/channels/" + channelID.String() + "/messages"
	if err := c.do(ctx, http.MethodPost, path, msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessageWithFiles posts a message with file attachments via
// multipart upload.
func (c *Client) SendMessageWithFiles(ctx context.Context, channelID snowflake.ChannelID, msg *CreateMessage, files []File) (*protocol.Message, error) {
	var out protocol.Message
	path := "/channels/" + channelID.String() + "/messages"
	if err := c.doMultipart(ctx, http.MethodPost, path, msg, files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Channel fetches one channel.
func (c *Client) Channel(ctx context.Context, id snowflake.ChannelID) (*protocol.Channel, error) {
	var out protocol.Channel
	if err := c.do(ctx, http.MethodGet, "/channels/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Guild fetches one guild with approximate member counts.
func (c *Client) Guild(ctx context.Context, id snowflake.GuildID) (*protocol.Guild, error) {
	var out protocol.Guild
	path := "/guilds/" + id.String() + "?with_counts=true"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages fetches up to limit messages before the given message ID
// (newest first). A zero before starts from the present.
func (c *Client) Messages(ctx context.Context, channelID snowflake.ChannelID, limit int, before snowflake.MessageID) ([]protocol.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit)
	if !before.IsZero() {
		path += "&before=" + before.String()
	}
	var out []protocol.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FirstMessage fetches the oldest message in a channel, or nil for an
// empty channel.
func (c *Client) FirstMessage(ctx context.Context, channelID snowflake.ChannelID) (*protocol.Message, error) {
	path := "/channels/" + channelID.String() + "/messages?after=0&limit=1"
	var out []protocol.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// CountMessages pages backwards through a channel counting messages, up to
// max. Returns the count and whether it was truncated at max.
func (c *Client) CountMessages(ctx context.Context, channelID snowflake.ChannelID, max int) (int, bool, error) {
	count := 0
	var before snowflake.MessageID
	for count < max {
		batch, err := c.Messages(ctx, channelID, 100, before)
		if err != nil {
			return count, false, err
		}
		count += len(batch)
		if len(batch) < 100 {
			return count, false, nil
		}
		before = batch[len(batch)-1].ID
	}
	return max, true, nil
}
