package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
)

type HelpCommand struct {
	base
	registry *cmd.Registry
	prefix   string
}

func NewHelpCommand(reg *cmd.Registry, prefix string) *HelpCommand {
	return &HelpCommand{
		base: base{
			name:        "help",
			description: "List commands, or show how to use one",
			category:    config.CategoryInformation,
			usages:      []cmd.Usage{{Invoke: "help"}, {Invoke: "commands", Hidden: true}},
			params: []cmd.Param{
				{Name: "command", Description: "Command name or usage", Type: argtypes.TypeString, Optional: true, Remainder: true},
			},
		},
		registry: reg,
		prefix:   prefix,
	}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	env, err := envOf(inv)
	if err != nil {
		return err
	}
	if name := inv.Args.String("command"); name != "" {
		return env.Reply(ctx, c.describe(name))
	}
	return env.Reply(ctx, c.overview())
}

func categoryOf(c cmd.Command) string {
	if cat, ok := cmd.Root(c).(Categorized); ok {
		return cat.Category()
	}
	return "Other"
}

// lookup finds a command by name or by usage, so `role add` finds role-add.
func (c *HelpCommand) lookup(name string) cmd.Command {
	name = strings.TrimPrefix(name, c.prefix)
	if found := c.registry.Get(name); found != nil {
		return found
	}
	if m, ok := cmd.MatchCommand(name, "", c.registry.Commands()); ok {
		return m.Command
	}
	return nil
}

func (c *HelpCommand) describe(name string) string {
	found := c.lookup(name)
	if found == nil {
		return fmt.Sprintf("Unknown command `%s`. Try `%shelp`.", name, c.prefix)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** - %s\n", found.Name(), found.Description())
	for _, line := range cmd.UsageLines(c.prefix, found) {
		fmt.Fprintf(&b, "`%s`\n", line)
	}
	for _, p := range found.Params() {
		if p.Description != "" {
			fmt.Fprintf(&b, "• `%s`: %s\n", p.Name, p.Description)
		}
	}

	if sub := c.subcommands(found); len(sub) > 0 {
		b.WriteString("See also:\n")
		for _, s := range sub {
			for _, line := range cmd.UsageLines(c.prefix, s) {
				fmt.Fprintf(&b, "`%s` - %s\n", line, s.Description())
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// subcommands returns the other commands reachable through a verb after one
// of parent's invoke words, e.g. `role add` for `role`.
func (c *HelpCommand) subcommands(parent cmd.Command) []cmd.Command {
	invokes := make(map[string]bool)
	for _, u := range parent.Usages() {
		if !u.Hidden && len(u.Verbs) == 0 {
			invokes[u.Invoke] = true
		}
	}
	var out []cmd.Command
	for _, command := range c.registry.All() {
		if command.Name() == parent.Name() {
			continue
		}
		for _, u := range command.Usages() {
			if !u.Hidden && len(u.Verbs) > 0 && invokes[u.Invoke] {
				out = append(out, command)
				break
			}
		}
	}
	return out
}

func (c *HelpCommand) overview() string {
	byCategory := make(map[string][]cmd.Command)
	for _, command := range c.registry.All() {
		if len(cmd.UsageLines(c.prefix, command)) == 0 {
			continue
		}
		cat := categoryOf(command)
		byCategory[cat] = append(byCategory[cat], command)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	slices.SortFunc(cats, func(a, b string) int {
		return cmp.Or(cmp.Compare(config.CategoryWeight(a), config.CategoryWeight(b)), strings.Compare(a, b))
	})

	var b strings.Builder
	for i, cat := range cats {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "**%s**\n", cat)
		for _, command := range byCategory[cat] {
			fmt.Fprintf(&b, "`%s` - %s\n", cmd.UsageLines(c.prefix, command)[0], command.Description())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
