package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createClearWarnsCommand creates the /mod clearwarns subcommand
func createClearWarnsCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Elimina todas las advertencias de un usuario",
		"mod",
		func(ctx *discord.CommandContext) error {
			user := ctx.GetUserOption("usuario")
			if user == nil {
				return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
			}

			return runDeferred(ctx, deps, false, user.ID, func(c context.Context) string {
				res, err := deps.Service.ClearWarnings(c, user.ID)
				if err != nil {
					return moderation.UserMessage(err)
				}
				return res.Message
			})
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario cuyas advertencias se eliminarán",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}
