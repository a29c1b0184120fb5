package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
)

const defaultPurgeCount = 10

// PurgeCommand deletes recent messages in the current channel, optionally
// only those of some users.
type PurgeCommand struct{ base }

func NewPurgeCommand() *PurgeCommand {
	return &PurgeCommand{base{
		name:        "purge",
		description: "Delete recent messages in this channel",
		category:    config.CategoryCleanup,
		usages:      []cmd.Usage{{Invoke: "purge"}, {Invoke: "clear", Hidden: true}},
		params: []cmd.Param{
			{
				Name:        "count",
				Description: "How many messages to scan, 1 to 100",
				Type:        argtypes.TypeInt,
				HasDefault:  true,
				Default:     defaultPurgeCount,
				Validators:  []cmd.Validator{cmd.Range(1, 100)},
			},
			{
				Name:        "users",
				Description: "Only delete messages by these users",
				Type:        argtypes.TypeUser,
				Optional:    true,
				Repeatable:  true,
			},
		},
	}}
}

func (c *PurgeCommand) Permissions() int64 { return discordgo.PermissionManageMessages }

func (c *PurgeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	if !requireGuild(ctx, env) {
		return nil
	}
	mod, err := moderatorOf(inv)
	if err != nil {
		return err
	}

	var authors []string
	for _, u := range cmd.ListOf[*discordgo.User](inv.Args, "users") {
		authors = append(authors, u.ID)
	}

	n, err := mod.DeleteRecent(ctx, env.ChannelID(), inv.Args.Int("count"), authors)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	switch n {
	case 0:
		return env.Reply(ctx, "🧹 Nothing to delete.")
	case 1:
		return env.Reply(ctx, "🧹 Deleted 1 message.")
	}
	return env.Reply(ctx, fmt.Sprintf("🧹 Deleted %d messages.", n))
}
