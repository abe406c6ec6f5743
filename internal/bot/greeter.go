package bot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nextlevelbuilder/discgate/internal/gateway"
	"github.com/nextlevelbuilder/discgate/internal/rest"
	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// greeter welcomes each user once when they first come online. It needs a
// channel to post in: the first text channel of the first GUILD_CREATE,
// or failing that the channel of the first message the bot witnesses.
type greeter struct {
	mu      sync.Mutex
	channel snowflake.ChannelID
	greeted map[snowflake.UserID]bool
}

func newGreeter() *greeter {
	return &greeter{greeted: make(map[snowflake.UserID]bool)}
}

// adoptChannel claims id as the greeting channel if none is set yet and
// reports whether it did.
func (g *greeter) adoptChannel(id snowflake.ChannelID) bool {
	if id.IsZero() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.channel.IsZero() {
		return false
	}
	g.channel = id
	return true
}

// channelID returns the greeting channel, zero when none is known yet.
func (g *greeter) channelID() snowflake.ChannelID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.channel
}

// markGreeted records that user came online and reports whether this is
// their first time, i.e. whether a greeting is owed.
func (g *greeter) markGreeted(user snowflake.UserID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.greeted[user] {
		return false
	}
	g.greeted[user] = true
	return true
}

// firstTextChannel picks the guild's first plain text channel.
func firstTextChannel(channels []protocol.Channel) (protocol.Channel, bool) {
	for _, ch := range channels {
		if ch.Type == protocol.ChannelGuildText {
			return ch, true
		}
	}
	return protocol.Channel{}, false
}

func (b *Bot) onGuildCreate(ctx context.Context, ev gateway.Event) {
	var guild protocol.GuildCreate
	if err := json.Unmarshal(ev.Data, &guild); err != nil {
		b.log.Warn("bot: bad GUILD_CREATE payload", "error", err)
		return
	}
	b.log.Debug("bot: guild available", "guild", guild.Name, "id", guild.ID)

	if ch, ok := firstTextChannel(guild.Channels); ok && b.greet.adoptChannel(ch.ID) {
		b.log.Info("bot: greeting channel set",
			"channel", ch.Name, "channel_id", ch.ID)
	}
}

func (b *Bot) onPresenceUpdate(ctx context.Context, ev gateway.Event) {
	var p protocol.PresenceUpdate
	if err := json.Unmarshal(ev.Data, &p); err != nil {
		b.log.Warn("bot: bad PRESENCE_UPDATE payload", "error", err)
		return
	}
	if p.Status != "online" {
		return
	}
	if p.User.ID.IsZero() || p.User.ID == b.gw.Self().ID {
		return
	}
	// Mark first so a user is greeted at most once even if the channel
	// is not known at the time they appear.
	if !b.greet.markGreeted(p.User.ID) {
		return
	}
	channel := b.greet.channelID()
	if channel.IsZero() {
		return
	}
	greeting := "Welcome online, " + p.User.Mention() +
		"! \U0001F389 Hope you're having a great day!"
	b.async("greet", func() {
		gctx, cancel := context.WithTimeout(context.Background(), restTimeout)
		defer cancel()
		if _, err := b.rest.SendMessage(gctx, channel, rest.NewMessage(greeting)); err != nil {
			b.log.Warn("bot: greeting failed", "user", p.User.ID, "error", err)
		}
	})
}
