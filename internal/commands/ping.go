package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
)

type PingCommand struct{ base }

func NewPingCommand() *PingCommand {
	return &PingCommand{base{
		name:        "ping",
		description: "Check that the bot is alive",
		category:    config.CategoryInformation,
		usages:      []cmd.Usage{{Invoke: "ping"}},
	}}
}

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	msg := "🏓 Pong!"
	if l, ok := env.(interface{ Latency() time.Duration }); ok {
		msg = fmt.Sprintf("🏓 Pong! Response time: `%dms`", l.Latency().Milliseconds())
	}
	return env.Reply(ctx, msg)
}
