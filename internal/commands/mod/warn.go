// Package mod - /mod warn command
package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		func(ctx *discord.CommandContext) error {
			return warnHandler(ctx, deps)
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    true,
			MaxLength:   512,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers | discordgo.PermissionBanMembers).
		InGuild()
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext, deps Deps) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.Bot {
		return ctx.ReplyEphemeral("❌ No se puede advertir a un bot.")
	}

	req := moderation.WarnRequest{
		GuildID:     ctx.Interaction.GuildID,
		SubjectID:   user.ID,
		ModeratorID: ctx.User().ID,
		Reason:      ctx.GetStringOption("razon"),
	}

	return runDeferred(ctx, deps, false, req.SubjectID, func(c context.Context) string {
		res, err := deps.Service.Warn(c, req)
		if err != nil {
			return moderation.UserMessage(err)
		}
		return res.Message
	})
}
