package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/bwmarrin/discordgo"
)

// Discord caps audit log reasons at 512 characters
const maxAuditReason = 512

// ModerationSurface applies timeouts and bans through the REST API
type ModerationSurface struct {
	session *discordgo.Session
	now     func() time.Time
}

// NewModerationSurface creates a surface bound to the bot session
func NewModerationSurface(session *discordgo.Session) *ModerationSurface {
	return &ModerationSurface{session: session, now: time.Now}
}

// Suspend times the member out for d
func (m *ModerationSurface) Suspend(ctx context.Context, guildID, subjectID string, d time.Duration) error {
	until := m.now().Add(d)
	err := m.session.GuildMemberTimeout(guildID, subjectID, &until, discordgo.WithContext(ctx))
	return classifyRESTError("timeout", err)
}

// Remove bans the member without deleting their messages
func (m *ModerationSurface) Remove(ctx context.Context, guildID, subjectID, reason string) error {
	err := m.session.GuildBanCreateWithReason(guildID, subjectID, truncate(reason, maxAuditReason), 0, discordgo.WithContext(ctx))
	return classifyRESTError("ban", err)
}

// Lift removes an active timeout
func (m *ModerationSurface) Lift(ctx context.Context, guildID, subjectID string) error {
	err := m.session.GuildMemberTimeout(guildID, subjectID, nil, discordgo.WithContext(ctx))
	return classifyRESTError("untimeout", err)
}

// classifyRESTError maps "unknown member/user" to punish.ErrSubjectGone
func classifyRESTError(op string, err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%s: %w", op, punish.ErrSubjectGone)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ChannelSender posts audit messages to text channels
type ChannelSender struct {
	session *discordgo.Session
}

func NewChannelSender(session *discordgo.Session) *ChannelSender {
	return &ChannelSender{session: session}
}

// Send posts text without pinging anyone it mentions
func (c *ChannelSender) Send(ctx context.Context, channelID, text string) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}
