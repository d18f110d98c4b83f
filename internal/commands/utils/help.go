package utils

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

const helpText = "📖 **Ayuda de PancyMod**\n\n" +
	"**Utilidades:**\n" +
	"• `/utils ping` - Comprueba la latencia\n" +
	"• `/utils status` - Estado del bot\n\n" +
	"**Moderación:**\n" +
	"• `/mod warn <usuario> <razón>` - Advierte a un usuario\n" +
	"• `/mod warns [usuario]` - Lista las advertencias\n" +
	"• `/mod clearwarns <usuario>` - Elimina todas las advertencias\n" +
	"• `/mod history` - Últimas advertencias del registro\n" +
	"• `/mod mute <usuario> <duración> [razón]` - Silencia a un usuario\n" +
	"• `/mod unmute <usuario>` - Retira el silencio\n" +
	"• `/mod ban <usuario> [razón]` - Banea a un usuario\n\n" +
	"**Sanciones automáticas:**\n" +
	"• 3 advertencias: aislamiento de 10 minutos\n" +
	"• 5 o más advertencias: baneo"

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.ReplyEphemeral(helpText)
	}()
	return nil
}
