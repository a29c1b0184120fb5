package discord

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
)

// bulkDeleteMaxAge is how old a message may be for bulk deletion.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// MessageContext is the environment of a command sent as a chat message. It
// implements commands.Env and commands.Moderator.
type MessageContext struct {
	Session *discordgo.Session
	Message *discordgo.Message
}

func (c *MessageContext) GuildID() string { return c.Message.GuildID }

func (c *MessageContext) ChannelID() string { return c.Message.ChannelID }

func (c *MessageContext) AuthorID() string {
	if c.Message.Author == nil {
		return ""
	}
	return c.Message.Author.ID
}

// Latency is the gateway heartbeat round trip.
func (c *MessageContext) Latency() time.Duration {
	return c.Session.HeartbeatLatency()
}

// Reply answers the command message. Only user mentions ping.
func (c *MessageContext) Reply(ctx context.Context, text string) error {
	_, err := c.Session.ChannelMessageSendComplex(c.Message.ChannelID, &discordgo.MessageSend{
		Content:   text,
		Reference: c.Message.SoftReference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}, discordgo.WithContext(ctx))
	return err
}

func (c *MessageContext) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.Session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (c *MessageContext) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.Session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// DeleteRecent deletes from the limit messages before the command message.
// Messages younger than two weeks go in one bulk request, older ones one by
// one.
func (c *MessageContext) DeleteRecent(ctx context.Context, channelID string, limit int, authors []string) (int, error) {
	msgs, err := c.Session.ChannelMessages(channelID, limit, c.Message.ID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}

	recent, old := pickDeletions(msgs, authors, time.Now())
	deleted := 0
	switch len(recent) {
	case 0:
	case 1:
		old = append(old, recent[0])
	default:
		if err := c.Session.ChannelMessagesBulkDelete(channelID, recent, discordgo.WithContext(ctx)); err != nil {
			return 0, fmt.Errorf("bulk delete: %w", err)
		}
		deleted = len(recent)
	}

	for _, id := range old {
		if err := c.Session.ChannelMessageDelete(channelID, id, discordgo.WithContext(ctx)); err != nil {
			return deleted, fmt.Errorf("delete message %s: %w", id, err)
		}
		deleted++
		select {
		case <-ctx.Done():
			return deleted, ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
	return deleted, nil
}

// pickDeletions filters msgs by author and splits their IDs into those that
// may be bulk deleted and older ones.
func pickDeletions(msgs []*discordgo.Message, authors []string, now time.Time) (recent, old []string) {
	for _, m := range msgs {
		if len(authors) > 0 && (m.Author == nil || !slices.Contains(authors, m.Author.ID)) {
			continue
		}
		if now.Sub(m.Timestamp) < bulkDeleteMaxAge {
			recent = append(recent, m.ID)
		} else {
			old = append(old, m.ID)
		}
	}
	return recent, old
}
