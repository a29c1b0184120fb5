// Package commands holds the bot's text commands. Commands reach the outside
// world only through Env and Moderator, so the same set runs under the
// Discord adapter and the CLI.
package commands

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
)

// Env is the transport a command was invoked from.
type Env interface {
	argtypes.Scope
	ChannelID() string
	AuthorID() string
	Reply(ctx context.Context, text string) error
}

// Moderator is implemented by environments that can change guild state.
type Moderator interface {
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	// DeleteRecent deletes up to limit recent messages in channelID, only
	// those by authors when it is non-empty, and returns how many went.
	DeleteRecent(ctx context.Context, channelID string, limit int, authors []string) (int, error)
}

// Categorized commands are grouped by category in help.
type Categorized interface {
	Category() string
}

// Privileged commands require the invoking member to hold any of the
// returned Discord permission bits.
type Privileged interface {
	Permissions() int64
}

var (
	ErrNoEnv          = errors.New("commands: invocation has no environment")
	ErrCannotModerate = errors.New("commands: environment cannot moderate")
)

func envOf(inv *cmd.Invocation) (Env, error) {
	env, ok := inv.Data.(Env)
	if !ok {
		return nil, ErrNoEnv
	}
	return env, nil
}

func moderatorOf(inv *cmd.Invocation) (Moderator, error) {
	m, ok := inv.Data.(Moderator)
	if !ok {
		return nil, ErrCannotModerate
	}
	return m, nil
}

// Deps are the collaborators commands need beyond their Env.
type Deps struct {
	// Directory lists guild roles and looks up the invoking member.
	Directory argtypes.Directory
	// Jobs schedules reminders.
	Jobs *jobmgr.Manager
	// Prefix is shown in help output.
	Prefix string
	// Intn returns a number in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

func (d Deps) intn() func(int) int {
	if d.Intn != nil {
		return d.Intn
	}
	return rand.IntN
}

// Register adds every command to reg, wrapped in mws, and the dice type to
// types.
func Register(reg *cmd.Registry, types *argtypes.Registry, deps Deps, mws ...cmd.Middleware) {
	types.Register(TypeDice, parseDice)

	for _, c := range []cmd.Command{
		NewPingCommand(),
		NewHelpCommand(reg, deps.Prefix),
		NewRollCommand(deps.intn()),
		NewRoleCommand(deps.Directory),
		NewRoleAddCommand(),
		NewRoleRemoveCommand(),
		NewPurgeCommand(),
		NewRemindCommand(deps.Jobs),
	} {
		reg.Register(cmd.Apply(c, mws...))
	}
}

// base carries the declarative half of a command.
type base struct {
	name        string
	description string
	category    string
	usages      []cmd.Usage
	params      []cmd.Param
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Category() string    { return b.category }
func (b *base) Usages() []cmd.Usage { return b.usages }
func (b *base) Params() []cmd.Param { return b.params }
