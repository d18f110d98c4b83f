// Package mod - /mod ban command
package mod

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /mod ban subcommand
func createBanCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		func(ctx *discord.CommandContext) error {
			return banHandler(ctx, deps)
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a banear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del ban",
			Required:    false,
			MaxLength:   512,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuild()
}

// banHandler handles the /mod ban command
func banHandler(ctx *discord.CommandContext, deps Deps) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.ID == ctx.User().ID {
		return ctx.ReplyEphemeral("❌ No puedes banearte a ti mismo.")
	}

	reason := orDefault(ctx.GetStringOption("razon"))
	guildID := ctx.Interaction.GuildID

	return runDeferred(ctx, deps, false, user.ID, func(c context.Context) string {
		if err := deps.Moderator.Remove(c, guildID, user.ID, reason); err != nil {
			logger.Warn(fmt.Sprintf("Error baneando a %s: %v", user.ID, err), "CMD-Mod")
			return actionError("banear", err)
		}
		return fmt.Sprintf("🔨 **%s** ha sido baneado.\n**Razón:** %s", user.Username, reason)
	})
}
