package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var (
	errGuildOnly         = errors.New("command used outside a guild")
	errMissingPermission = errors.New("missing permissions")
	errBotPermission     = errors.New("bot is missing permissions")
)

var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrador"},
	{discordgo.PermissionBanMembers, "Banear miembros"},
	{discordgo.PermissionKickMembers, "Expulsar miembros"},
	{discordgo.PermissionModerateMembers, "Aislar miembros"},
	{discordgo.PermissionManageMessages, "Gestionar mensajes"},
	{discordgo.PermissionManageGuild, "Gestionar servidor"},
	{discordgo.PermissionSendMessages, "Enviar mensajes"},
}

// hasPermissions reports whether granted covers every bit of required.
// Administrator implies everything.
func hasPermissions(granted, required int64) bool {
	if required == 0 {
		return true
	}
	if granted&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return granted&required == required
}

// describePermissions lists the names of the bits in perms
func describePermissions(perms int64) string {
	names := make([]string, 0)
	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			names = append(names, p.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%x", perms)
	}
	return strings.Join(names, ", ")
}

// PermissionMiddleware gates a command on guild context and on the bot's and
// the member's permissions before it runs
func (c *ExtendedClient) PermissionMiddleware(ctx *CommandContext, cmd *Command) error {
	member := ctx.Member()

	if cmd.GuildOnly && (ctx.Interaction.GuildID == "" || member == nil) {
		_ = ctx.ReplyEphemeral("❌ Este comando solo puede usarse dentro de un servidor.")
		return errGuildOnly
	}

	if cmd.BotPermissions != 0 && ctx.Interaction.GuildID != "" &&
		!hasPermissions(ctx.Interaction.AppPermissions, cmd.BotPermissions) {
		_ = ctx.ReplyEphemeral("❌ Me faltan permisos para esto: " + describePermissions(cmd.BotPermissions))
		return errBotPermission
	}

	if cmd.UserPermissions == 0 {
		return nil
	}

	var granted int64
	if member != nil {
		granted = member.Permissions
	}
	if hasPermissions(granted, cmd.UserPermissions) {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Permisos insuficientes",
		Description: "No tienes permisos para usar este comando.",
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Requiere",
				Value: describePermissions(cmd.UserPermissions),
			},
		},
	}
	_ = ctx.ReplyEphemeralEmbed(embed)

	logger.Warn(fmt.Sprintf("Usuario %s intentó usar %s sin permisos", ctx.User().ID, cmd.Name), "PermissionMiddleware")
	return errMissingPermission
}
