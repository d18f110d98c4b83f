// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod).
package commands

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, modDeps mod.Deps, utilsDeps utils.Deps) {
	// /utils ping, /utils status, /utils help
	utils.RegisterUtilsCommands(client, utilsDeps)

	// /mod warn, /mod warns, /mod clearwarns, /mod history, /mod mute, /mod unmute, /mod ban
	mod.RegisterModCommands(client, modDeps)

	logger.System(fmt.Sprintf("Comandos cargados: %d", client.Commands.Size()), "Commands")
}
