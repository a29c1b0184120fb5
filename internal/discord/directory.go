package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/argtypes"
	"github.com/keshon/textcmd/pkg/retrylimit"
)

const memberSearchLimit = 10

// restClient is the subset of *discordgo.Session used for lookups.
type restClient interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembersSearch(guildID, query string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

// SessionDirectory resolves entities from the gateway state cache and falls
// back to the REST API behind an adaptive rate limiter.
type SessionDirectory struct {
	state   *discordgo.State
	rest    restClient
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
}

// NewSessionDirectory looks entities up through s. limiter may be nil.
func NewSessionDirectory(s *discordgo.Session, limiter *retrylimit.AdaptiveLimiter) *SessionDirectory {
	return newDirectory(s.State, s, limiter)
}

func newDirectory(state *discordgo.State, rest restClient, limiter *retrylimit.AdaptiveLimiter) *SessionDirectory {
	retry := retrylimit.DefaultConfig()
	retry.Classify = classify
	return &SessionDirectory{state: state, rest: rest, limiter: limiter, retry: retry}
}

// classify maps REST failures to retry decisions: 429 slows the limiter down,
// 5xx and transport errors retry, other API errors are final.
func classify(err error) retrylimit.Decision {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retrylimit.Stop
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response == nil {
			return retrylimit.Retry
		}
		switch code := restErr.Response.StatusCode; {
		case code == http.StatusTooManyRequests:
			return retrylimit.Throttle
		case code >= 500:
			return retrylimit.Retry
		}
		return retrylimit.Stop
	}
	return retrylimit.Retry
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// call runs fn under the limiter and maps 404 to argtypes.ErrNotFound.
func (d *SessionDirectory) call(ctx context.Context, what string, fn func(opts ...discordgo.RequestOption) error) error {
	err := retrylimit.Do(ctx, d.limiter, d.retry, func(ctx context.Context) error {
		return fn(discordgo.WithContext(ctx))
	})
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return argtypes.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (d *SessionDirectory) cachedGuild(guildID string) *discordgo.Guild {
	if d.state == nil {
		return nil
	}
	g, err := d.state.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}

func (d *SessionDirectory) User(ctx context.Context, userID string) (*discordgo.User, error) {
	var u *discordgo.User
	err := d.call(ctx, "fetch user", func(opts ...discordgo.RequestOption) (err error) {
		u, err = d.rest.User(userID, opts...)
		return err
	})
	return u, err
}

func (d *SessionDirectory) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if d.state != nil {
		if m, err := d.state.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	var m *discordgo.Member
	err := d.call(ctx, "fetch member", func(opts ...discordgo.RequestOption) (err error) {
		m, err = d.rest.GuildMember(guildID, userID, opts...)
		return err
	})
	return m, err
}

func (d *SessionDirectory) SearchMembers(ctx context.Context, guildID, query string) ([]*discordgo.Member, error) {
	var found []*discordgo.Member
	err := d.call(ctx, "search members", func(opts ...discordgo.RequestOption) (err error) {
		found, err = d.rest.GuildMembersSearch(guildID, query, memberSearchLimit, opts...)
		return err
	})
	return found, err
}

func (d *SessionDirectory) Roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if g := d.cachedGuild(guildID); g != nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	var roles []*discordgo.Role
	err := d.call(ctx, "fetch roles", func(opts ...discordgo.RequestOption) (err error) {
		roles, err = d.rest.GuildRoles(guildID, opts...)
		return err
	})
	return roles, err
}

func (d *SessionDirectory) Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	if g := d.cachedGuild(guildID); g != nil && len(g.Channels) > 0 {
		return g.Channels, nil
	}
	var channels []*discordgo.Channel
	err := d.call(ctx, "fetch channels", func(opts ...discordgo.RequestOption) (err error) {
		channels, err = d.rest.GuildChannels(guildID, opts...)
		return err
	})
	return channels, err
}
