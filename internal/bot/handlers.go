package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/nextlevelbuilder/discgate/internal/gateway"
	"github.com/nextlevelbuilder/discgate/internal/rest"
	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// countLimit caps how far /count pages back through a channel.
const countLimit = 5000

const restTimeout = 30 * time.Second

func (b *Bot) onMessageCreate(ctx context.Context, ev gateway.Event) {
	var msg protocol.Message
	if err := json.Unmarshal(ev.Data, &msg); err != nil {
		b.log.Warn("bot: bad MESSAGE_CREATE payload", "error", err)
		return
	}
	// Never react to bots, ourselves included, or command loops happen.
	if msg.Author.Bot || msg.Author.ID == b.gw.Self().ID {
		return
	}
	// Any observed conversation works as a greeting channel when no
	// GUILD_CREATE offered one.
	if b.greet.adoptChannel(msg.ChannelID) {
		b.log.Info("bot: greeting channel set", "channel_id", msg.ChannelID)
	}
	cfg := b.config()
	if !cfg.ChannelAllowed(msg.ChannelID) {
		return
	}

	cmd, arg, ok := b.parseTextCommand(cfg.Prefix, msg.Content)
	if !ok {
		return
	}
	b.log.Info("bot: text command", "command", cmd, "user", msg.Author.Username)

	switch cmd {
	case "hello":
		b.replyTo(ctx, &msg, rest.NewMessage("Hello, "+msg.Author.Mention()+"!"))
	case "ping":
		b.replyTo(ctx, &msg, rest.NewMessage("\U0001F3D3 Pong!"))
	case "uptime":
		b.replyTo(ctx, &msg, rest.NewMessage("Up for "+b.uptime().String()))
	case "roll":
		content, row := b.cmdRoll(arg)
		reply := rest.NewMessage(content)
		if row != nil {
			reply.WithComponents(*row)
		}
		b.replyTo(ctx, &msg, reply)
	case "count":
		// Paging through thousands of messages takes a while; answer out
		// of band so the dispatcher keeps moving.
		b.async("count", func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			b.replyTo(cctx, &msg, rest.NewMessage(b.cmdCount(cctx, msg.ChannelID)))
		})
	case "first":
		b.replyTo(ctx, &msg, rest.NewMessage(b.cmdFirst(ctx, &msg)))
	case "serverinfo":
		embed, err := b.cmdServerInfo(ctx, msg.GuildID)
		if err != nil {
			b.replyTo(ctx, &msg, rest.NewMessage("Could not fetch server info."))
			return
		}
		b.replyTo(ctx, &msg, rest.NewMessage("").WithEmbed(embed))
	case "whoami":
		b.replyTo(ctx, &msg, rest.NewMessage("").WithEmbed(b.cmdWhoami(&msg.Author, msg.Member)))
	case "help":
		b.replyTo(ctx, &msg, rest.NewMessage(helpText))
	}
}

// parseTextCommand strips the prefix or a leading mention of the bot and
// splits the remainder into a command word and its argument string.
func (b *Bot) parseTextCommand(prefix, content string) (cmd, arg string, ok bool) {
	content = strings.TrimSpace(content)
	remainder := ""
	switch {
	case prefix != "" && strings.HasPrefix(content, prefix):
		remainder = content[len(prefix):]
	default:
		self := b.gw.Self().ID
		if self.IsZero() {
			return "", "", false
		}
		plain := "<@" + self.String() + ">"
		nick := "<@!" + self.String() + ">"
		if strings.HasPrefix(content, plain) {
			remainder = content[len(plain):]
		} else if strings.HasPrefix(content, nick) {
			remainder = content[len(nick):]
		} else {
			return "", "", false
		}
	}

	fields := strings.Fields(remainder)
	if len(fields) == 0 {
		return "", "", false
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " "), true
}

// replyTo posts a reply in the message's channel, logging failures.
func (b *Bot) replyTo(ctx context.Context, msg *protocol.Message, reply *rest.CreateMessage) {
	ctx, cancel := context.WithTimeout(ctx, restTimeout)
	defer cancel()
	reply.InReplyTo(msg.ChannelID, msg.ID)
	if _, err := b.rest.SendMessage(ctx, msg.ChannelID, reply); err != nil {
		b.log.Error("bot: reply failed", "channel", msg.ChannelID, "error", err)
	}
}

// async runs fn on its own goroutine with panic containment, mirroring
// the dispatcher's handler isolation.
func (b *Bot) async(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("bot: background task panic",
					"task", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}

// cmdRoll rolls the requested dice and offers a reroll button carrying
// the dice notation in its custom_id.
func (b *Bot) cmdRoll(notation string) (string, *protocol.Component) {
	count, sides, err := parseDice(notation)
	if err != nil {
		return "Can't roll that: " + err.Error(), nil
	}
	row := protocol.ActionRow(protocol.Button(
		protocol.ButtonSecondary,
		fmt.Sprintf("reroll:%dd%d", count, sides),
		"Reroll"))
	return rollDice(count, sides), &row
}

func (b *Bot) cmdCount(ctx context.Context, channelID snowflake.ChannelID) string {
	count, truncated, err := b.rest.CountMessages(ctx, channelID, countLimit)
	if err != nil {
		b.log.Error("bot: count failed", "channel", channelID, "error", err)
		return "Counting failed partway through."
	}
	if truncated {
		return fmt.Sprintf("This channel has more than %d messages.", count)
	}
	return fmt.Sprintf("This channel has %d messages.", count)
}

func (b *Bot) cmdFirst(ctx context.Context, msg *protocol.Message) string {
	ctx, cancel := context.WithTimeout(ctx, restTimeout)
	defer cancel()
	first, err := b.rest.FirstMessage(ctx, msg.ChannelID)
	if err != nil {
		b.log.Error("bot: first-message lookup failed", "channel", msg.ChannelID, "error", err)
		return "Could not find the first message."
	}
	if first == nil {
		return "This channel has no messages yet."
	}
	return "First message: " + messageLink(msg.GuildID, msg.ChannelID, first.ID)
}

// messageLink builds the canonical jump URL. DMs use "@me" in the guild
// slot.
func messageLink(guildID snowflake.GuildID, channelID snowflake.ChannelID, messageID snowflake.MessageID) string {
	guild := "@me"
	if !guildID.IsZero() {
		guild = guildID.String()
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guild, channelID, messageID)
}

func (b *Bot) cmdServerInfo(ctx context.Context, guildID snowflake.GuildID) (*protocol.Embed, error) {
	if guildID.IsZero() {
		return nil, fmt.Errorf("bot: serverinfo outside a guild")
	}
	ctx, cancel := context.WithTimeout(ctx, restTimeout)
	defer cancel()
	guild, err := b.rest.Guild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	members := guild.ApproxMembers
	if members == 0 {
		members = guild.MemberCount
	}
	embed := protocol.NewEmbed().
		WithTitle(guild.Name).
		WithColor(0x5865F2).
		AddInlineField("Members", fmt.Sprintf("%d", members)).
		AddInlineField("Online", fmt.Sprintf("%d", guild.ApproxPresences)).
		AddInlineField("Created", guild.ID.Time().Format("2006-01-02")).
		WithFooter("ID: " + guild.ID.String())
	if guild.Description != "" {
		embed.WithDescription(guild.Description)
	}
	return embed, nil
}

func (b *Bot) cmdWhoami(user *protocol.User, member *protocol.Member) *protocol.Embed {
	embed := protocol.NewEmbed().
		WithTitle(user.DisplayName()).
		WithColor(0x57F287).
		AddInlineField("Username", user.Username).
		AddInlineField("Created", user.ID.Time().Format("2006-01-02")).
		WithFooter("ID: " + user.ID.String())
	if member != nil {
		if !member.JoinedAt.IsZero() {
			embed.AddInlineField("Joined", member.JoinedAt.Format("2006-01-02"))
		}
		if len(member.Roles) > 0 {
			embed.AddInlineField("Roles", fmt.Sprintf("%d", len(member.Roles)))
		}
	}
	return embed
}
