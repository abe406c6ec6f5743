package rest

import (
	"context"
	"net/http"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// Interaction response types.
const (
	ResponsePong            = 1
	ResponseChannelMessage  = 4
	ResponseDeferredMessage = 5
	ResponseDeferredUpdate  = 6
	ResponseUpdateMessage   = 7
	ResponseModal           = 9
)

// Message flag for responses only the invoking user can see.
const FlagEphemeral = 1 << 6

// InteractionResponse is the body of the interaction callback endpoint.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *CallbackData `json:"data,omitempty"`
}

// CallbackData carries the visible part of an interaction response. For
// modals, CustomID and Title identify the dialog and Components hold its
// inputs.
type CallbackData struct {
	Content    string               `json:"content,omitempty"`
	Embeds     []protocol.Embed     `json:"embeds,omitempty"`
	Components []protocol.Component `json:"components,omitempty"`
	Flags      int                  `json:"flags,omitempty"`
	CustomID   string               `json:"custom_id,omitempty"`
	Title      string               `json:"title,omitempty"`
}

// MessageResponse replies to an interaction with a channel message.
func MessageResponse(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &CallbackData{Content: content},
	}
}

// EphemeralResponse replies with a message only the invoker sees.
func EphemeralResponse(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &CallbackData{Content: content, Flags: FlagEphemeral},
	}
}

// EmbedResponse replies with a single embed.
func EmbedResponse(e *protocol.Embed) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &CallbackData{Embeds: []protocol.Embed{*e}},
	}
}

// UpdateResponse edits the message the component interaction came from.
func UpdateResponse(content string, components ...protocol.Component) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseUpdateMessage,
		Data: &CallbackData{Content: content, Components: components},
	}
}

// ModalResponse opens a modal dialog.
func ModalResponse(customID, title string, rows ...protocol.Component) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseModal,
		Data: &CallbackData{CustomID: customID, Title: title, Components: rows},
	}
}

// RespondToInteraction delivers the callback for an interaction. The
// endpoint returns 204 on success.
func (c *Client) RespondToInteraction(ctx context.Context, id snowflake.InteractionID, token string, resp *InteractionResponse) error {
	path := "/interactions/" + id.String() + "/" + token + "/callback"
	return c.do(ctx, http.MethodPost, path, resp, nil)
}

// EditOriginalResponse edits the message created by the initial
// interaction response.
func (c *Client) EditOriginalResponse(ctx context.Context, appID snowflake.ApplicationID, token string, data *CallbackData) error {
	path := "/webhooks/" + appID.String() + "/" + token + "/messages/@original"
	return c.do(ctx, http.MethodPatch, path, data, nil)
}
