package utils

import (
	"context"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker reports the event bus connection state
type Broker interface {
	IsConnected() bool
}

// Deps holds what the utility commands inspect. Broker may be nil.
type Deps struct {
	Ledger Pinger
	Broker Broker
}

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, deps Deps) {
	group := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		createPingCommand(deps),
		createStatusCommand(deps),
		createHelpCommand(),
	)

	client.CommandHandler.AddGlobalCommand(group)
}
