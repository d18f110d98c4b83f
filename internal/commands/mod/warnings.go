package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createWarningsCommand creates the /mod warns subcommand
func createWarningsCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista de advertencias de un usuario",
		"mod",
		func(ctx *discord.CommandContext) error {
			return warningsHandler(ctx, deps)
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a buscar (opcional)",
			Required:    false,
		},
	).InGuild()
}

// canViewWarnings lets members see their own list; other lists need moderator rights
func canViewWarnings(callerID, targetID string, perms int64) bool {
	if callerID == targetID {
		return true
	}
	return perms&(discordgo.PermissionModerateMembers|discordgo.PermissionAdministrator) != 0
}

func warningsHandler(ctx *discord.CommandContext, deps Deps) error {
	caller := ctx.User()
	target := ctx.GetUserOption("usuario")
	if target == nil {
		target = caller
	}

	var perms int64
	if m := ctx.Member(); m != nil {
		perms = m.Permissions
	}
	if !canViewWarnings(caller.ID, target.ID, perms) {
		return ctx.ReplyEphemeral("❌ No tienes permisos para ver la lista de advertencias de otro usuario.")
	}

	return runDeferred(ctx, deps, true, target.ID, func(c context.Context) string {
		msg, err := deps.Service.ViewWarnings(c, target.ID)
		if err != nil {
			return moderation.UserMessage(err)
		}
		return msg
	})
}
