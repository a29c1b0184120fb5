package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/keshon/textcmd/internal/argtypes"
)

// consoleEnv prints replies and applies role changes to the static
// directory, so later lines see them.
type consoleEnv struct {
	out     io.Writer
	dir     *argtypes.StaticDirectory
	guild   string
	channel string
	author  string

	mu sync.Mutex
}

func (e *consoleEnv) GuildID() string   { return e.guild }
func (e *consoleEnv) ChannelID() string { return e.channel }
func (e *consoleEnv) AuthorID() string  { return e.author }

func (e *consoleEnv) Reply(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintf(e.out, "%s %s\n", botStyle.Sprint("bot ›"), text)
	return err
}

func (e *consoleEnv) AddRole(_ context.Context, guildID, userID, roleID string) error {
	return e.updateRoles(guildID, userID, func(roles []string) []string {
		if slices.Contains(roles, roleID) {
			return roles
		}
		return append(roles, roleID)
	})
}

func (e *consoleEnv) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	return e.updateRoles(guildID, userID, func(roles []string) []string {
		return slices.DeleteFunc(roles, func(id string) bool { return id == roleID })
	})
}

// DeleteRecent has no message history to work on.
func (e *consoleEnv) DeleteRecent(context.Context, string, int, []string) (int, error) {
	return 0, nil
}

func (e *consoleEnv) updateRoles(guildID, userID string, f func([]string) []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.dir.Guilds[guildID]
	if !ok {
		return fmt.Errorf("guild %s: %w", guildID, argtypes.ErrNotFound)
	}
	i := slices.IndexFunc(g.Members, func(m argtypes.StaticMember) bool { return m.ID == userID })
	if i < 0 {
		return fmt.Errorf("member %s: %w", userID, argtypes.ErrNotFound)
	}
	g.Members[i].Roles = f(g.Members[i].Roles)
	return nil
}
