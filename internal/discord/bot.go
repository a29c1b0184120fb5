// Package discord runs the text command core as a Discord bot.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/internal/commands"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
	"github.com/keshon/textcmd/pkg/retrylimit"
	"github.com/rs/zerolog/log"
)

const resolveTimeout = 10 * time.Second

// Bot is a Discord bot answering prefixed text commands.
type Bot struct {
	session  *discordgo.Session
	resolver *cmd.Resolver
	jobs     *jobmgr.Manager
}

// New builds the session, the command registry and the resolver. It does not
// connect.
func New(cfg *config.Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	limiter := retrylimit.NewAdaptiveLimiter(cfg.LookupRate, 1, cfg.LookupRateMax)
	dir := NewSessionDirectory(s, limiter)

	types := argtypes.NewRegistry()
	types.RegisterEntities(dir)

	jobs := jobmgr.NewManager(logJobEvent)
	reg := cmd.NewRegistry()
	commands.Register(reg, types, commands.Deps{Directory: dir, Jobs: jobs, Prefix: cfg.Prefix},
		middlewares(sessionPermissions(s), cfg.DeveloperID)...)
	if err := types.Check(reg.Commands()); err != nil {
		return nil, err
	}

	return &Bot{
		session:  s,
		resolver: &cmd.Resolver{Registry: reg, Parser: cfg.Parser(types), Prefix: cfg.Prefix},
		jobs:     jobs,
	}, nil
}

// Run connects to the gateway and serves until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("❎ Shutdown signal received. Cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.jobs.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending jobs did not stop in time")
	}
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Str("prefix", b.resolver.Prefix).
		Msg("✅ Discord bot is running")
}

func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	prefix, ok := commandPrefix(m.Content, b.resolver.Prefix, botID)
	if !ok {
		return
	}
	b.handle(ctx, &MessageContext{Session: s, Message: m.Message}, m.Content, prefix)
}

// commandPrefix returns the prefix content starts with: the configured one or
// a mention of the bot.
func commandPrefix(content, prefix, botID string) (string, bool) {
	if prefix != "" && strings.HasPrefix(content, prefix) {
		return prefix, true
	}
	if botID == "" {
		return "", false
	}
	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, mention) {
			return mention, true
		}
	}
	return "", false
}

// handle resolves content and runs the matched command against env.
func (b *Bot) handle(ctx context.Context, env commands.Env, content, prefix string) {
	rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	res, ok, err := b.resolver.ResolveWithPrefix(rctx, content, prefix, env)
	cancel()

	logger := log.With().
		Str("guild", env.GuildID()).
		Str("channel", env.ChannelID()).
		Str("user", env.AuthorID()).
		Logger()

	if err != nil {
		logger.Error().Err(err).Str("input", content).Msg("Failed to resolve command")
		reply(ctx, env, "Something went wrong while reading that command. Try again in a moment.")
		return
	}
	if !ok {
		return
	}
	if !res.Result.OK() {
		logger.Debug().
			Str("command", res.Command.Name()).
			Stringer("outcome", res.Result.Outcome).
			Msg("Command rejected")
		reply(ctx, env, failureText(b.resolver.Prefix, res))
		return
	}

	if err := res.Command.Run(ctx, res.Invocation(env)); err != nil {
		logger.Error().Err(err).Str("command", res.Command.Name()).Msg("Error running command")
		reply(ctx, env, fmt.Sprintf("Error running command: %v", err))
	}
}

// failureText explains a failed parse and shows the usage that matched.
func failureText(prefix string, res *cmd.Resolution) string {
	return fmt.Sprintf("%s\nUsage: `%s`", cmd.Describe(res.Result), cmd.FormatUsage(prefix, res.Usage, res.Command.Params()))
}

func reply(ctx context.Context, env commands.Env, text string) {
	if err := env.Reply(ctx, text); err != nil {
		log.Warn().Err(err).Str("channel", env.ChannelID()).Msg("Failed to send reply")
	}
}

func logJobEvent(ev jobmgr.Event) {
	switch ev.State {
	case jobmgr.Failed:
		log.Error().Err(ev.Err).Str("job", ev.Name).Msg("Job failed")
	default:
		log.Debug().Str("job", ev.Name).Str("state", string(ev.State)).Msg("Job event")
	}
}
