package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
)

// RoleCommand lists the roles of a member, the author by default.
type RoleCommand struct {
	base
	dir argtypes.Directory
}

func NewRoleCommand(dir argtypes.Directory) *RoleCommand {
	return &RoleCommand{
		base: base{
			name:        "role",
			description: "Show the roles of a member",
			category:    config.CategoryModeration,
			usages:      []cmd.Usage{{Invoke: "role"}, {Invoke: "roles", Hidden: true}},
			params: []cmd.Param{
				{Name: "member", Type: argtypes.TypeMember, Optional: true},
			},
		},
		dir: dir,
	}
}

func (c *RoleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	if !requireGuild(ctx, env) {
		return nil
	}
	if c.dir == nil {
		return fmt.Errorf("role: no directory configured")
	}

	member, ok := cmd.Value[*discordgo.Member](inv.Args, "member")
	if !ok {
		member, err = c.dir.Member(ctx, env.GuildID(), env.AuthorID())
		if err != nil {
			return fmt.Errorf("look up author: %w", err)
		}
	}

	roles, err := c.dir.Roles(ctx, env.GuildID())
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	names := make(map[string]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.Name
	}

	var held []string
	for _, id := range member.Roles {
		if name, ok := names[id]; ok {
			held = append(held, name)
		}
	}
	if len(held) == 0 {
		return env.Reply(ctx, fmt.Sprintf("**%s** has no roles.", displayName(member)))
	}
	return env.Reply(ctx, fmt.Sprintf("**%s** has: %s", displayName(member), strings.Join(held, ", ")))
}

// roleChange backs `role add` and `role remove`.
type roleChange struct {
	base
	verb  string
	apply func(m Moderator, ctx context.Context, guildID, userID, roleID string) error
}

type RoleAddCommand struct{ roleChange }

type RoleRemoveCommand struct{ roleChange }

func roleChangeParams() []cmd.Param {
	return []cmd.Param{
		{Name: "member", Type: argtypes.TypeMember},
		{Name: "roles", Type: argtypes.TypeRole, Repeatable: true},
	}
}

func NewRoleAddCommand() *RoleAddCommand {
	return &RoleAddCommand{roleChange{
		base: base{
			name:        "role-add",
			description: "Give roles to a member",
			category:    config.CategoryModeration,
			usages:      []cmd.Usage{{Invoke: "role", Verbs: []string{"add"}}},
			params:      roleChangeParams(),
		},
		verb:  "Added",
		apply: Moderator.AddRole,
	}}
}

func NewRoleRemoveCommand() *RoleRemoveCommand {
	return &RoleRemoveCommand{roleChange{
		base: base{
			name:        "role-remove",
			description: "Take roles from a member",
			category:    config.CategoryModeration,
			usages: []cmd.Usage{
				{Invoke: "role", Verbs: []string{"remove"}},
				{Invoke: "role", Verbs: []string{"rm"}, Hidden: true},
			},
			params: roleChangeParams(),
		},
		verb:  "Removed",
		apply: Moderator.RemoveRole,
	}}
}

func (c *roleChange) Permissions() int64 { return discordgo.PermissionManageRoles }

func (c *roleChange) Run(ctx context.Context, inv *cmd.Invocation) error {
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

	member, _ := cmd.Value[*discordgo.Member](inv.Args, "member")
	roles := cmd.ListOf[*discordgo.Role](inv.Args, "roles")
	if member == nil || member.User == nil {
		return fmt.Errorf("%s: member argument missing", c.name)
	}

	var done []string
	for _, r := range roles {
		if err := c.apply(mod, ctx, env.GuildID(), member.User.ID, r.ID); err != nil {
			return fmt.Errorf("%s %s: %w", c.name, r.Name, err)
		}
		done = append(done, r.Name)
	}
	return env.Reply(ctx, fmt.Sprintf("%s %s for **%s**.", c.verb, strings.Join(done, ", "), displayName(member)))
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.Username
	}
	return "unknown"
}

// requireGuild replies and reports false outside a guild.
func requireGuild(ctx context.Context, env Env) bool {
	if env.GuildID() != "" {
		return true
	}
	_ = env.Reply(ctx, "This command only works in a server.")
	return false
}
