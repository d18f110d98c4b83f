package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		func(ctx *discord.CommandContext) error {
			go func() {
				defer errors.RecoverMiddleware()()

				c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				ctx.Reply(statusReport(c, deps, ctx.Client.GuildCount(), time.Since(ctx.Client.StartTime)))
			}()
			return nil
		},
	)
}

func ledgerStatus(ctx context.Context, p Pinger) string {
	if p == nil || p.Ping(ctx) != nil {
		return "🔴 | Desconectado"
	}
	return "🟢 | En linea"
}

func brokerStatus(b Broker) string {
	switch {
	case b == nil:
		return "⚪ | Deshabilitado"
	case b.IsConnected():
		return "🟢 | En linea"
	default:
		return "🔴 | Desconectado"
	}
}

func statusReport(ctx context.Context, deps Deps, guilds int, uptime time.Duration) string {
	return fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: 🟢 Online\n"+
			"• Registro de advertencias: %s\n"+
			"• MQTT: %s\n"+
			"• Servidores: %d\n"+
			"• Tiempo activo: %s",
		ledgerStatus(ctx, deps.Ledger),
		brokerStatus(deps.Broker),
		guilds,
		uptime.Truncate(time.Second),
	)
}
