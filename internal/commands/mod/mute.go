// Package mod - /mod mute and /mod unmute commands
package mod

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Discord rejects timeouts longer than 28 days
const maxMuteMinutes = 28 * 24 * 60

// createMuteCommand creates the /mod mute subcommand
func createMuteCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario temporalmente",
		"mod",
		func(ctx *discord.CommandContext) error {
			return muteHandler(ctx, deps)
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a silenciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración en minutos",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    maxMuteMinutes,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del silencio",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// muteHandler handles the /mod mute command
func muteHandler(ctx *discord.CommandContext, deps Deps) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	minutes := ctx.GetIntOption("duracion")
	if minutes < 1 || minutes > maxMuteMinutes {
		return ctx.ReplyEphemeral("❌ La duración debe estar entre 1 minuto y 28 días.")
	}
	reason := orDefault(ctx.GetStringOption("razon"))
	guildID := ctx.Interaction.GuildID

	return runDeferred(ctx, deps, false, user.ID, func(c context.Context) string {
		err := deps.Moderator.Suspend(c, guildID, user.ID, time.Duration(minutes)*time.Minute)
		if err != nil {
			logger.Warn(fmt.Sprintf("Error silenciando a %s: %v", user.ID, err), "CMD-Mod")
			return actionError("silenciar", err)
		}
		return fmt.Sprintf("🔇 **%s** ha sido silenciado por %d minutos.\n**Razón:** %s", user.Username, minutes, reason)
	})
}

// createUnmuteCommand creates the /mod unmute subcommand
func createUnmuteCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Retira el silencio de un usuario",
		"mod",
		func(ctx *discord.CommandContext) error {
			user := ctx.GetUserOption("usuario")
			if user == nil {
				return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
			}
			guildID := ctx.Interaction.GuildID

			return runDeferred(ctx, deps, false, user.ID, func(c context.Context) string {
				if err := deps.Moderator.Lift(c, guildID, user.ID); err != nil {
					return actionError("quitar el silencio", err)
				}
				return fmt.Sprintf("🔊 **%s** ya puede hablar de nuevo.", user.Username)
			})
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a desilenciar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// actionError renders a failed manual action
func actionError(action string, err error) string {
	if stderrors.Is(err, punish.ErrSubjectGone) {
		return "❌ El usuario no está en el servidor."
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("❌ Discord tardó demasiado en responder al %s.", action)
	}
	return fmt.Sprintf("❌ Error al %s: %v", action, err)
}
