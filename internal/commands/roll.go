package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
)

// maxRollDetail bounds the per-die listing in a reply, in runes.
const maxRollDetail = 1500

type RollCommand struct {
	base
	intn func(n int) int
}

func NewRollCommand(intn func(n int) int) *RollCommand {
	return &RollCommand{
		base: base{
			name:        "roll",
			description: "Roll dice with formulas like `2d6+1d4*2`",
			category:    config.CategoryGameplay,
			usages:      []cmd.Usage{{Invoke: "roll"}, {Invoke: "dice"}},
			params: []cmd.Param{{
				Name:        "formula",
				Description: "Dice and numbers joined by + - * /",
				Type:        TypeDice,
				Remainder:   true,
			}},
		},
		intn: intn,
	}
}

func (c *RollCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	f, ok := cmd.Value[*Formula](inv.Args, "formula")
	if !ok {
		return fmt.Errorf("roll: formula argument missing")
	}

	total, detail, err := f.Roll(c.intn)
	if errors.Is(err, ErrDivisionByZero) {
		return env.Reply(ctx, "Division by zero is forbidden. Even in games.")
	}
	if errors.Is(err, ErrOverflow) {
		return env.Reply(ctx, "That roll is too large to count.")
	}
	if err != nil {
		return err
	}
	detail = cmd.Preview(detail, maxRollDetail)
	return env.Reply(ctx, fmt.Sprintf("🎲 `%s`\n%s\n**Result**: **%d**", f.Source, detail, total))
}
