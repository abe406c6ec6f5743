package bot

import "github.com/nextlevelbuilder/discgate/internal/rest"

// CommandSet is the full slash command surface of the bot. Registration
// replaces whatever is live with exactly this set.
func CommandSet() []rest.Command {
	return []rest.Command{
		{Name: "ping", Description: "Check that the bot is alive"},
		{Name: "uptime", Description: "How long the bot has been running"},
		{
			Name:        "roll",
			Description: "Roll dice",
			Options: []rest.CommandOption{{
				Type:        rest.OptionString,
				Name:        "dice",
				Description: "Dice to roll, like 2d6 (default 1d6)",
			}},
		},
		{Name: "serverinfo", Description: "Show details about this server"},
		{Name: "whoami", Description: "Show details about your account"},
		{
			Name:        "count",
			Description: "Count the messages in this channel",
		},
		{Name: "first", Description: "Link the first message in this channel"},
		{Name: "help", Description: "List everything the bot can do"},
		{Name: "report", Description: "Open a form to report a problem"},
		{Name: "demo-select", Description: "Try out a select menu"},
		{Name: "send-logo", Description: "Post the project logo"},
	}
}

const helpText = `**Slash commands**
` + "`/ping` `/uptime` `/roll [dice]` `/serverinfo` `/whoami` `/count` `/first` `/help` `/report` `/demo-select` `/send-logo`" + `

**Text commands** (prefix or @mention)
` + "`hello` `ping` `uptime` `roll [dice]` `count` `first` `serverinfo` `whoami` `help`"
