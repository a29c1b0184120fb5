package argtypes

import (
	"context"
	"errors"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/cmd"
	"golang.org/x/text/cases"
)

// ErrNotFound is returned by a Directory for entities that do not exist.
// Parsers turn it into a rejection; every other Directory error aborts
// resolution.
var ErrNotFound = errors.New("argtypes: not found")

// Directory looks up Discord entities for entity type parsers.
type Directory interface {
	User(ctx context.Context, userID string) (*discordgo.User, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	// SearchMembers returns members whose username or nickname starts with
	// query.
	SearchMembers(ctx context.Context, guildID, query string) ([]*discordgo.Member, error)
	Roles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
}

// Scope is implemented by invocation payloads that belong to a guild.
type Scope interface {
	GuildID() string
}

func guildOf(data any) string {
	if s, ok := data.(Scope); ok {
		return s.GuildID()
	}
	return ""
}

var (
	userMention    = regexp.MustCompile(`^<@!?(\d{15,21})>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d{15,21})>$`)
	channelMention = regexp.MustCompile(`^<#(\d{15,21})>$`)
	snowflake      = regexp.MustCompile(`^\d{15,21}$`)
)

// idFrom extracts an ID from a mention matching re or from a bare snowflake.
func idFrom(re *regexp.Regexp, raw string) (string, bool) {
	if m := re.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if snowflake.MatchString(raw) {
		return raw, true
	}
	return "", false
}

// RegisterEntities adds the user, member, role and channel types backed by
// dir.
func (r *Registry) RegisterEntities(dir Directory) {
	e := &entities{dir: dir}
	r.Register(TypeUser, e.user)
	r.Register(TypeMember, e.member)
	r.Register(TypeRole, e.role)
	r.Register(TypeChannel, e.channel)
}

type entities struct {
	dir Directory
}

// lookup folds ErrNotFound into a rejection.
func lookup[T any](v T, err error, p cmd.Param, raw string) (any, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, cmd.Rejectf("%s: %q not found", p.Name, raw)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e *entities) user(ctx context.Context, raw string, p cmd.Param, _ any) (any, error) {
	id, ok := idFrom(userMention, raw)
	if !ok {
		return nil, cmd.Rejectf("%s: %q is not a user mention", p.Name, raw)
	}
	u, err := e.dir.User(ctx, id)
	return lookup(u, err, p, raw)
}

func (e *entities) member(ctx context.Context, raw string, p cmd.Param, data any) (any, error) {
	guildID := guildOf(data)
	if guildID == "" {
		return nil, cmd.Rejectf("%s: members only exist in a server", p.Name)
	}
	if id, ok := idFrom(userMention, raw); ok {
		m, err := e.dir.Member(ctx, guildID, id)
		return lookup(m, err, p, raw)
	}

	found, err := e.dir.SearchMembers(ctx, guildID, raw)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	fold := cases.Fold()
	key := fold.String(raw)
	for _, m := range found {
		if m.User == nil {
			continue
		}
		if fold.String(m.User.Username) == key || (m.Nick != "" && fold.String(m.Nick) == key) {
			return m, nil
		}
	}
	return nil, cmd.Rejectf("%s: no member named %q", p.Name, raw)
}

func (e *entities) role(ctx context.Context, raw string, p cmd.Param, data any) (any, error) {
	guildID := guildOf(data)
	if guildID == "" {
		return nil, cmd.Rejectf("%s: roles only exist in a server", p.Name)
	}
	roles, err := e.dir.Roles(ctx, guildID)
	if err != nil {
		return lookup[*discordgo.Role](nil, err, p, raw)
	}
	id, byID := idFrom(roleMention, raw)
	fold := cases.Fold()
	key := fold.String(raw)
	for _, role := range roles {
		if (byID && role.ID == id) || (!byID && fold.String(role.Name) == key) {
			return role, nil
		}
	}
	return nil, cmd.Rejectf("%s: no role %q", p.Name, raw)
}

func (e *entities) channel(ctx context.Context, raw string, p cmd.Param, data any) (any, error) {
	guildID := guildOf(data)
	if guildID == "" {
		return nil, cmd.Rejectf("%s: channels only exist in a server", p.Name)
	}
	channels, err := e.dir.Channels(ctx, guildID)
	if err != nil {
		return lookup[*discordgo.Channel](nil, err, p, raw)
	}
	id, byID := idFrom(channelMention, raw)
	fold := cases.Fold()
	key := fold.String(raw)
	if len(raw) > 1 && raw[0] == '#' {
		key = fold.String(raw[1:])
	}
	for _, ch := range channels {
		if (byID && ch.ID == id) || (!byID && fold.String(ch.Name) == key) {
			return ch, nil
		}
	}
	return nil, cmd.Rejectf("%s: no channel %q", p.Name, raw)
}
