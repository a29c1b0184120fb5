package commands

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
)

const maxReminder = 7 * 24 * time.Hour

// RemindCommand replies again after a delay.
type RemindCommand struct {
	base
	jobs *jobmgr.Manager
	seq  atomic.Uint64
}

func NewRemindCommand(jobs *jobmgr.Manager) *RemindCommand {
	return &RemindCommand{
		base: base{
			name:        "remind",
			description: "Remind yourself of something later",
			category:    config.CategoryUtilities,
			usages:      []cmd.Usage{{Invoke: "remind"}, {Invoke: "remindme", Hidden: true}},
			params: []cmd.Param{
				{
					Name:        "in",
					Description: "Delay such as 15m, 2h30m or 1d",
					Type:        argtypes.TypeDuration,
					HasDefault:  true,
					Default:     10 * time.Minute,
					Validators:  []cmd.Validator{durationWithin(time.Second, maxReminder)},
				},
				{
					Name:        "text",
					Description: "What to remind you of",
					Type:        argtypes.TypeString,
					Remainder:   true,
				},
			},
		},
		jobs: jobs,
	}
}

func durationWithin(lo, hi time.Duration) cmd.Validator {
	return func(_ context.Context, value any, p cmd.Param) error {
		d, ok := value.(time.Duration)
		if !ok {
			return fmt.Errorf("%s: expected a duration, got %T", p.Name, value)
		}
		if d < lo || d > hi {
			return cmd.Rejectf("%s must be between %s and %s", p.Name, lo, hi)
		}
		return nil
	}
}

func (c *RemindCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	if c.jobs == nil {
		return fmt.Errorf("remind: no scheduler configured")
	}

	delay := inv.Args.Duration("in")
	text := inv.Args.String("text")
	author := env.AuthorID()
	name := fmt.Sprintf("remind:%s:%d", author, c.seq.Add(1))

	err = c.jobs.After(name, delay, func(jobCtx context.Context) error {
		return env.Reply(jobCtx, fmt.Sprintf("⏰ <@%s> %s", author, text))
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	return env.Reply(ctx, fmt.Sprintf("⏰ I'll remind you in %s.", delay))
}
