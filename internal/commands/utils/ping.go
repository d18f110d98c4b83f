package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot y del registro de advertencias",
		"utils",
		func(ctx *discord.CommandContext) error {
			go func() {
				defer errors.RecoverMiddleware()()

				c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				gateway := ctx.Client.Session.HeartbeatLatency()
				ledger, err := timePing(c, deps.Ledger)
				ctx.Reply(pingReply(gateway, ledger, err))
			}()
			return nil
		},
	)
}

func timePing(ctx context.Context, p Pinger) (time.Duration, error) {
	if p == nil {
		return 0, fmt.Errorf("sin registro configurado")
	}
	start := time.Now()
	err := p.Ping(ctx)
	return time.Since(start), err
}

func pingReply(gateway, ledger time.Duration, ledgerErr error) string {
	ledgerPart := fmt.Sprintf("%dms", ledger.Milliseconds())
	if ledgerErr != nil {
		ledgerPart = "sin respuesta"
	}
	return fmt.Sprintf("🏓 Pong! Gateway: %dms | Registro: %s", gateway.Milliseconds(), ledgerPart)
}
