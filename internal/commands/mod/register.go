// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// Moderator is the platform surface used by the manual commands
type Moderator interface {
	punish.Surface
	Lift(ctx context.Context, guildID, subjectID string) error
}

// Deps holds what the moderation commands need
type Deps struct {
	Service   *moderation.Service
	Moderator Moderator
	// Timeout bounds a whole command, ledger and REST calls included
	Timeout time.Duration
}

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, deps Deps) {
	group := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		createWarnCommand(deps),
		createWarningsCommand(deps),
		createClearWarnsCommand(deps),
		createHistoryCommand(deps),
		createMuteCommand(deps),
		createUnmuteCommand(deps),
		createBanCommand(deps),
	)

	client.CommandHandler.AddGlobalCommand(group)
}

// runDeferred acknowledges the interaction and runs fn in its own goroutine,
// editing the reply with whatever fn returns. subjectID is the only user the
// reply may ping; empty pings nobody.
func runDeferred(ctx *discord.CommandContext, deps Deps, ephemeral bool, subjectID string, fn func(c context.Context) string) error {
	go func() {
		defer errors.RecoverMiddleware()()

		var err error
		if ephemeral {
			err = ctx.DeferEphemeral()
		} else {
			err = ctx.Defer()
		}
		if err != nil {
			logger.Error("Error difiriendo la respuesta: "+err.Error(), "CMD-Mod")
			return
		}

		timeout := deps.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		c, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var mentions []string
		if subjectID != "" {
			mentions = []string{subjectID}
		}
		if err := ctx.EditReply(fn(c), mentions...); err != nil {
			logger.Error("Error editando la respuesta: "+err.Error(), "CMD-Mod")
		}
	}()
	return nil
}

// orDefault returns the trimmed reason or a placeholder for manual actions
func orDefault(reason string) string {
	if reason == "" {
		return "Sin razón especificada"
	}
	return reason
}
