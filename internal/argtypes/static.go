package argtypes

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"
)

// StaticDirectory is an in-memory Directory, loaded from YAML fixtures by the
// CLI and used by tests.
//
//	guilds:
//	  "111111111111111111":
//	    members:
//	      - {id: "222222222222222222", username: bob, nick: Bobby}
//	    roles:
//	      - {id: "333333333333333333", name: Moderator}
//	    channels:
//	      - {id: "444444444444444444", name: general}
type StaticDirectory struct {
	Guilds map[string]StaticGuild `yaml:"guilds"`
}

type StaticGuild struct {
	Members  []StaticMember `yaml:"members"`
	Roles    []StaticNamed  `yaml:"roles"`
	Channels []StaticNamed  `yaml:"channels"`
}

type StaticMember struct {
	ID       string   `yaml:"id"`
	Username string   `yaml:"username"`
	Nick     string   `yaml:"nick"`
	Bot      bool     `yaml:"bot"`
	Roles    []string `yaml:"roles"`
}

type StaticNamed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadStaticDirectory reads a YAML fixture file.
func LoadStaticDirectory(path string) (*StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	return ParseStaticDirectory(data)
}

// ParseStaticDirectory decodes YAML fixtures.
func ParseStaticDirectory(data []byte) (*StaticDirectory, error) {
	var d StaticDirectory
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	if d.Guilds == nil {
		d.Guilds = make(map[string]StaticGuild)
	}
	return &d, nil
}

func (m StaticMember) user() *discordgo.User {
	return &discordgo.User{ID: m.ID, Username: m.Username, Bot: m.Bot}
}

func (m StaticMember) member(guildID string) *discordgo.Member {
	return &discordgo.Member{GuildID: guildID, User: m.user(), Nick: m.Nick, Roles: m.Roles}
}

func (d *StaticDirectory) User(_ context.Context, userID string) (*discordgo.User, error) {
	for _, g := range d.Guilds {
		for _, m := range g.Members {
			if m.ID == userID {
				return m.user(), nil
			}
		}
	}
	return nil, ErrNotFound
}

func (d *StaticDirectory) Member(_ context.Context, guildID, userID string) (*discordgo.Member, error) {
	g, ok := d.Guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, m := range g.Members {
		if m.ID == userID {
			return m.member(guildID), nil
		}
	}
	return nil, ErrNotFound
}

func (d *StaticDirectory) SearchMembers(_ context.Context, guildID, query string) ([]*discordgo.Member, error) {
	g, ok := d.Guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	query = strings.ToLower(query)
	var out []*discordgo.Member
	for _, m := range g.Members {
		if strings.HasPrefix(strings.ToLower(m.Username), query) || strings.HasPrefix(strings.ToLower(m.Nick), query) {
			out = append(out, m.member(guildID))
		}
	}
	return out, nil
}

func (d *StaticDirectory) Roles(_ context.Context, guildID string) ([]*discordgo.Role, error) {
	g, ok := d.Guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	roles := make([]*discordgo.Role, 0, len(g.Roles))
	for _, r := range g.Roles {
		roles = append(roles, &discordgo.Role{ID: r.ID, Name: r.Name})
	}
	return roles, nil
}

func (d *StaticDirectory) Channels(_ context.Context, guildID string) ([]*discordgo.Channel, error) {
	g, ok := d.Guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	channels := make([]*discordgo.Channel, 0, len(g.Channels))
	for _, c := range g.Channels {
		channels = append(channels, &discordgo.Channel{ID: c.ID, GuildID: guildID, Name: c.Name, Type: discordgo.ChannelTypeGuildText})
	}
	return channels, nil
}
