package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fatih/color"
	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/commands"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
	"github.com/rs/zerolog/log"
)

var (
	okStyle   = color.New(color.FgGreen, color.Bold)
	failStyle = color.New(color.FgRed, color.Bold)
	noteStyle = color.New(color.FgYellow)
	dimStyle  = color.New(color.Faint)
	botStyle  = color.New(color.FgCyan)
)

type appOptions struct {
	Config    *config.Config
	Directory string
	Guild     string
	Author    string
	Run       bool
	Tokens    bool
}

// app resolves lines against the full command set, with entity lookups
// served from a static directory.
type app struct {
	out      io.Writer
	registry *cmd.Registry
	resolver *cmd.Resolver
	env      *consoleEnv
	jobs     *jobmgr.Manager
	run      bool
	tokens   bool
}

func newApp(opts appOptions, out io.Writer) (*app, error) {
	dir := &argtypes.StaticDirectory{Guilds: make(map[string]argtypes.StaticGuild)}
	if opts.Directory != "" {
		var err error
		if dir, err = argtypes.LoadStaticDirectory(opts.Directory); err != nil {
			return nil, err
		}
	}

	guild := cmp.Or(opts.Guild, firstGuild(dir))
	g := dir.Guilds[guild]
	env := &consoleEnv{
		out:     out,
		dir:     dir,
		guild:   guild,
		channel: "console",
		author:  opts.Author,
	}
	if len(g.Channels) > 0 {
		env.channel = g.Channels[0].ID
	}
	if env.author == "" && len(g.Members) > 0 {
		env.author = g.Members[0].ID
	}

	types := argtypes.NewRegistry()
	types.RegisterEntities(dir)

	jobs := jobmgr.NewManager(logJobEvent)
	reg := cmd.NewRegistry()
	commands.Register(reg, types, commands.Deps{Directory: dir, Jobs: jobs, Prefix: opts.Config.Prefix})
	if err := types.Check(reg.Commands()); err != nil {
		return nil, err
	}

	return &app{
		out:      out,
		registry: reg,
		resolver: &cmd.Resolver{Registry: reg, Parser: opts.Config.Parser(types), Prefix: opts.Config.Prefix},
		env:      env,
		jobs:     jobs,
		run:      opts.Run,
		tokens:   opts.Tokens,
	}, nil
}

func firstGuild(dir *argtypes.StaticDirectory) string {
	ids := make([]string, 0, len(dir.Guilds))
	for id := range dir.Guilds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// close cancels reminders that have not fired yet.
func (a *app) close(ctx context.Context) error {
	return a.jobs.Shutdown(ctx)
}

// evaluate resolves line and prints the outcome. Unmatched lines and rejected
// arguments are reported, not returned; the error is for resolution failures
// and failed runs.
func (a *app) evaluate(ctx context.Context, line string) error {
	res, ok, err := a.resolver.Resolve(ctx, line, a.env)
	if err != nil {
		fmt.Fprintf(a.out, "%s %v\n", failStyle.Sprint("✘ error:"), err)
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, noteStyle.Sprintf("no command matches %q", line))
		return nil
	}

	usage := cmd.FormatUsage(a.resolver.Prefix, res.Usage, res.Command.Params())
	if a.tokens {
		a.printTokens(res.Tokens)
	}
	if !res.Result.OK() {
		fmt.Fprintf(a.out, "%s %s %s\n", failStyle.Sprint("✘"), res.Command.Name(), cmd.Describe(res.Result))
		fmt.Fprintf(a.out, "  %s %s\n", dimStyle.Sprint("usage:"), usage)
		return nil
	}

	fmt.Fprintf(a.out, "%s %s %s\n", okStyle.Sprint("✔"), res.Command.Name(), dimStyle.Sprint(usage))
	a.printArgs(res.Command.Params(), res.Result.Args)

	if !a.run {
		return nil
	}
	if err := res.Command.Run(ctx, res.Invocation(a.env)); err != nil {
		fmt.Fprintf(a.out, "%s %v\n", failStyle.Sprint("✘ run:"), err)
		return err
	}
	return nil
}

func (a *app) printTokens(tokens []cmd.Token) {
	for _, t := range tokens {
		fmt.Fprintf(a.out, "  %s %q\n", dimStyle.Sprintf("[%d:%d]", t.Begin, t.End), t.Value)
	}
}

func (a *app) printArgs(params []cmd.Param, args cmd.Args) {
	width := 0
	for _, p := range params {
		width = max(width, len(p.Name))
	}
	for _, p := range params {
		fmt.Fprintf(a.out, "  %-*s = %s %s\n", width, p.Name, formatValue(args[p.Name]), dimStyle.Sprintf("(%s)", p.Type))
	}
}

// printCommands lists every command with its visible usages.
func (a *app) printCommands() {
	for _, c := range a.registry.All() {
		fmt.Fprintf(a.out, "%s  %s\n", okStyle.Sprint(c.Name()), c.Description())
		for _, line := range cmd.UsageLines(a.resolver.Prefix, c) {
			fmt.Fprintf(a.out, "  %s\n", line)
		}
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "none"
	case string:
		return strconv.Quote(v)
	case *discordgo.User:
		return fmt.Sprintf("@%s (%s)", v.Username, v.ID)
	case *discordgo.Member:
		name := v.Nick
		if v.User != nil {
			name = cmp.Or(name, v.User.Username)
			return fmt.Sprintf("@%s (%s)", name, v.User.ID)
		}
		return "@" + name
	case *discordgo.Role:
		return fmt.Sprintf("@%s (%s)", v.Name, v.ID)
	case *discordgo.Channel:
		return fmt.Sprintf("#%s (%s)", v.Name, v.ID)
	case *commands.Formula:
		return v.Source
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

func logJobEvent(ev jobmgr.Event) {
	if ev.State == jobmgr.Failed {
		log.Error().Err(ev.Err).Str("job", ev.Name).Msg("Job failed")
		return
	}
	log.Debug().Str("job", ev.Name).Str("state", string(ev.State)).Msg("Job event")
}
