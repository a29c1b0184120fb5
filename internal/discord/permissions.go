package discord

import (
	"context"
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/commands"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/rs/zerolog/log"
)

var permissionNames = map[int64]string{
	discordgo.PermissionAdministrator:   "Administrator",
	discordgo.PermissionManageGuild:     "Manage Server",
	discordgo.PermissionManageChannels:  "Manage Channels",
	discordgo.PermissionManageMessages:  "Manage Messages",
	discordgo.PermissionManageRoles:     "Manage Roles",
	discordgo.PermissionKickMembers:     "Kick Members",
	discordgo.PermissionBanMembers:      "Ban Members",
	discordgo.PermissionModerateMembers: "Moderate Members",
}

// permissionList names the bits set in perms, e.g. "Manage Roles or Kick Members".
func permissionList(perms int64) string {
	var names []string
	for p := uint64(perms); p != 0; p &= p - 1 {
		bit := int64(1) << bits.TrailingZeros64(p)
		name, ok := permissionNames[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", bit)
		}
		names = append(names, name)
	}
	return strings.Join(names, " or ")
}

// PermissionFunc returns the permission bits of userID in channelID.
type PermissionFunc func(ctx context.Context, userID, channelID string) (int64, error)

func sessionPermissions(s *discordgo.Session) PermissionFunc {
	return func(ctx context.Context, userID, channelID string) (int64, error) {
		return s.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	}
}

// middlewares is the bot's middleware stack. The permission check is
// outermost, so refused runs are never logged as executed.
func middlewares(perms PermissionFunc, developerID string) []cmd.Middleware {
	return []cmd.Middleware{LogCommands(), RequirePermissions(perms, developerID)}
}

// RequirePermissions guards commands implementing commands.Privileged: the
// author needs any one of the returned bits. Administrators and the developer
// always pass. Commands without requirements are returned unwrapped.
func RequirePermissions(perms PermissionFunc, developerID string) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		p, ok := cmd.Root(c).(commands.Privileged)
		if !ok || p.Permissions() == 0 {
			return c
		}
		required := p.Permissions()

		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			env, ok := inv.Data.(commands.Env)
			if !ok || env.GuildID() == "" {
				return c.Run(ctx, inv)
			}
			if developerID != "" && env.AuthorID() == developerID {
				return c.Run(ctx, inv)
			}

			have, err := perms(ctx, env.AuthorID(), env.ChannelID())
			if err != nil {
				return fmt.Errorf("failed to get user permissions: %w", err)
			}
			if have&discordgo.PermissionAdministrator != 0 || have&required != 0 {
				return c.Run(ctx, inv)
			}
			log.Info().
				Str("guild", env.GuildID()).
				Str("user", env.AuthorID()).
				Str("command", c.Name()).
				Msg("Command denied")
			return env.Reply(ctx, fmt.Sprintf("You need the %s permission to use `%s`.", permissionList(required), c.Name()))
		})
	}
}

// LogCommands logs every executed command with its arguments.
func LogCommands() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			event := log.Info()
			if err != nil {
				event = log.Warn().Err(err)
			}
			if env, ok := inv.Data.(commands.Env); ok {
				event = event.
					Str("guild", env.GuildID()).
					Str("channel", env.ChannelID()).
					Str("user", env.AuthorID())
			}
			event.
				Str("command", c.Name()).
				Str("usage", inv.Usage.String()).
				Str("args", inv.Args.Format(c.Params())).
				Dur("took", time.Since(start)).
				Msg("Command executed")
			return err
		})
	}
}
