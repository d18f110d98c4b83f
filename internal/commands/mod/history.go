package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createHistoryCommand creates the /mod history subcommand
func createHistoryCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"history",
		"Muestra las últimas advertencias registradas",
		"mod",
		func(ctx *discord.CommandContext) error {
			return runDeferred(ctx, deps, true, "", func(c context.Context) string {
				msg, err := deps.Service.History(c)
				if err != nil {
					return moderation.UserMessage(err)
				}
				return msg
			})
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}
