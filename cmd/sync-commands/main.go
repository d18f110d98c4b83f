// Package main provides a utility to sync Discord slash commands.
// This removes stale commands from Discord and ensures only currently-defined commands are registered.
// It only talks to the REST API; the gateway is never opened.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List all registered commands (global or guild)
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
//	-sync           Sync commands (remove stale, register current) - default behavior
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	flag.Bool("sync", true, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Console only; this tool should not spam the log webhooks
	log := logger.Init("", "", "")
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", "SyncCommands")

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	appID, err := client.CommandHandler.ApplicationID()
	if err != nil {
		logger.Critical(fmt.Sprintf("Error obteniendo la aplicación: %v", err), "SyncCommands")
		os.Exit(1)
	}

	// Handlers never run here, so the command definitions need no backends
	commands.RegisterAll(client, mod.Deps{}, utils.Deps{})

	scope := "globales"
	if *guildID != "" {
		scope = "del servidor " + *guildID
	}

	switch {
	case *listCmd:
		err = listCommands(client, appID, *guildID, scope)
	case *cleanCmd:
		err = cleanCommands(client, appID, *guildID, scope)
	default:
		err = syncCommands(client, appID, *guildID, scope)
	}

	if err != nil {
		logger.Error(err.Error(), "SyncCommands")
		os.Exit(1)
	}

	logger.Success("Operación completada exitosamente", "SyncCommands")
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient, appID, guildID, scope string) error {
	logger.Info("📋 Listando comandos "+scope+"...", "SyncCommands")

	cmds, err := client.CommandHandler.ListCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("error obteniendo comandos: %w", err)
	}

	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", "SyncCommands")
		return nil
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
	}
	return nil
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient, appID, guildID, scope string) error {
	logger.Info("🧹 Eliminando comandos "+scope+"...", "SyncCommands")

	if err := client.CommandHandler.ClearCommands(appID, guildID); err != nil {
		return fmt.Errorf("error eliminando comandos: %w", err)
	}

	logger.Success("✅ Todos los comandos han sido eliminados", "SyncCommands")
	return nil
}

// syncCommands removes stale commands and registers current ones
func syncCommands(client *discord.ExtendedClient, appID, guildID, scope string) error {
	logger.Info("🔄 Sincronizando comandos "+scope+"...", "SyncCommands")

	registered, err := client.CommandHandler.SyncCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("error sincronizando comandos: %w", err)
	}

	logger.Success(fmt.Sprintf("✅ %d comandos sincronizados correctamente", len(registered)), "SyncCommands")
	return nil
}
