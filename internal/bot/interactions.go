package bot

import (
	"context"
	"strings"
	"time"

	"github.com/nextlevelbuilder/discgate/internal/gateway"
	"github.com/nextlevelbuilder/discgate/internal/interaction"
	"github.com/nextlevelbuilder/discgate/internal/rest"
	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

const projectLogo = `     _ _                   _
  __| (_)___  ___ __ _ __ _| |_ ___
 / _' | / __|/ __/ _' / _' | __/ _ \
| (_| | \__ \ (_| (_| | (_| | ||  __/
 \__,_|_|___/\___\__, |\__,_|\__\___|
                 |___/
`

func (b *Bot) onInteractionCreate(ctx context.Context, ev gateway.Event) {
	in, err := interaction.Decode(ev.Data)
	if err != nil {
		b.log.Warn("bot: bad INTERACTION_CREATE payload", "error", err)
		return
	}

	switch in.Kind {
	case interaction.KindCommand:
		b.handleCommand(ctx, in)
	case interaction.KindComponent:
		b.handleComponent(ctx, in)
	case interaction.KindModal:
		b.handleModal(ctx, in)
	default:
		b.log.Debug("bot: ignoring interaction", "type", in.RawType)
	}
}

func (b *Bot) handleCommand(ctx context.Context, in *interaction.Interaction) {
	name := in.Command.Name
	b.log.Info("bot: slash command", "command", name)

	switch name {
	case "ping":
		b.respond(ctx, in, rest.MessageResponse("\U0001F3D3 Pong!"))
	case "uptime":
		b.respond(ctx, in, rest.MessageResponse("Up for "+b.uptime().String()))
	case "roll":
		spec, _ := in.Command.StringOption("dice")
		content, row := b.cmdRoll(spec)
		resp := rest.MessageResponse(content)
		if row != nil {
			resp.Data.Components = []protocol.Component{*row}
		}
		b.respond(ctx, in, resp)
	case "serverinfo":
		embed, err := b.cmdServerInfo(ctx, in.GuildID)
		if err != nil {
			b.respond(ctx, in, rest.EphemeralResponse("That only works inside a server."))
			return
		}
		b.respond(ctx, in, rest.EmbedResponse(embed))
	case "whoami":
		who := in.Invoker()
		if who == nil {
			b.respond(ctx, in, rest.EphemeralResponse("Could not tell who asked."))
			return
		}
		b.respond(ctx, in, rest.EmbedResponse(b.cmdWhoami(who, in.Member)))
	case "count":
		// Too slow for the 3-second interaction window: acknowledge now,
		// fill in the answer when the counting is done.
		b.respond(ctx, in, &rest.InteractionResponse{Type: rest.ResponseDeferredMessage})
		appID, token, channelID := in.ApplicationID, in.Token, in.ChannelID
		b.async("count", func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			content := b.cmdCount(cctx, channelID)
			if err := b.rest.EditOriginalResponse(cctx, appID, token,
				&rest.CallbackData{Content: content}); err != nil {
				b.log.Error("bot: count follow-up failed", "error", err)
			}
		})
	case "first":
		msg := &protocol.Message{GuildID: in.GuildID, ChannelID: in.ChannelID}
		b.respond(ctx, in, rest.MessageResponse(b.cmdFirst(ctx, msg)))
	case "help":
		b.respond(ctx, in, rest.EphemeralResponse(helpText))
	case "report":
		b.respond(ctx, in, rest.ModalResponse("report_modal", "Report a problem",
			protocol.ActionRow(protocol.TextInput(
				protocol.TextInputShort, "report_subject", "Subject", true)),
			protocol.ActionRow(protocol.TextInput(
				protocol.TextInputParagraph, "report_body", "What happened?", true)),
		))
	case "demo-select":
		menu := protocol.StringSelect("demo-select", "Pick a language",
			protocol.SelectOption{Label: "Go", Value: "go", Description: "Compiled, concurrent"},
			protocol.SelectOption{Label: "Rust", Value: "rust", Description: "Fast, fearless"},
			protocol.SelectOption{Label: "Python", Value: "python", Description: "Batteries included"},
		)
		resp := rest.MessageResponse("What should the next bot be written in?")
		resp.Data.Components = []protocol.Component{protocol.ActionRow(menu)}
		b.respond(ctx, in, resp)
	case "send-logo":
		b.respond(ctx, in, rest.EphemeralResponse("Incoming!"))
		channelID := in.ChannelID
		b.async("send-logo", func() {
			cctx, cancel := context.WithTimeout(context.Background(), restTimeout)
			defer cancel()
			_, err := b.rest.SendMessageWithFiles(cctx, channelID,
				rest.NewMessage("Here's the logo."),
				[]rest.File{{Name: "discgate-logo.txt", Data: []byte(projectLogo)}})
			if err != nil {
				b.log.Error("bot: logo upload failed", "error", err)
			}
		})
	default:
		b.respond(ctx, in, rest.EphemeralResponse("I don't know that command."))
	}
}

func (b *Bot) handleComponent(ctx context.Context, in *interaction.Interaction) {
	customID := in.Component.CustomID.String()
	switch {
	case strings.HasPrefix(customID, "reroll:"):
		spec := strings.TrimPrefix(customID, "reroll:")
		content, row := b.cmdRoll(spec)
		var rows []protocol.Component
		if row != nil {
			rows = append(rows, *row)
		}
		b.respond(ctx, in, rest.UpdateResponse(content, rows...))
	case customID == "demo-select":
		choice := in.Component.SelectedValue()
		if choice == "" {
			b.respond(ctx, in, rest.EphemeralResponse("Nothing selected."))
			return
		}
		b.respond(ctx, in, rest.MessageResponse("Noted: **"+choice+"** it is."))
	default:
		b.log.Debug("bot: unhandled component", "custom_id", customID)
		b.respond(ctx, in, rest.EphemeralResponse("That button does nothing anymore."))
	}
}

func (b *Bot) handleModal(ctx context.Context, in *interaction.Interaction) {
	if in.Modal.CustomID.String() != "report_modal" {
		b.log.Debug("bot: unhandled modal", "custom_id", in.Modal.CustomID)
		return
	}
	subject, _ := in.Modal.InputValue("report_subject")
	body, _ := in.Modal.InputValue("report_body")
	reporter := "someone"
	if who := in.Invoker(); who != nil {
		reporter = who.Username
	}
	b.log.Info("bot: report received", "from", reporter, "subject", subject,
		"body_len", len(body))
	b.respond(ctx, in, rest.EphemeralResponse("Thanks, the report was recorded."))
}

// respond delivers the interaction callback, logging failures. The
// callback has to land within seconds, so the timeout is short.
func (b *Bot) respond(ctx context.Context, in *interaction.Interaction, resp *rest.InteractionResponse) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.rest.RespondToInteraction(ctx, in.ID, in.Token, resp); err != nil {
		b.log.Error("bot: interaction response failed",
			"interaction", in.ID, "error", err)
	}
}
