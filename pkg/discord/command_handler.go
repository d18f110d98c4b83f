package discord

import (
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top-level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands.
// The group is hidden by default from members lacking the permissions every
// subcommand requires; the middleware still checks each subcommand on use.
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	var common int64 = -1
	guildOnly := len(subcommands) > 0
	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})

		common &= cmd.UserPermissions
		guildOnly = guildOnly && cmd.GuildOnly
	}

	group := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	if common > 0 {
		group.DefaultMemberPermissions = &common
	}
	if guildOnly {
		dm := false
		group.DMPermission = &dm
	}
	return group
}

// AddGlobalCommand adds a command to the command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// Commands returns the application commands that will be registered
func (ch *CommandHandler) Commands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands registers all slash commands with Discord.
// Outside production they go to the dev guild, where updates are instant.
func (ch *CommandHandler) RegisterCommands() {
	cfg := config.Get()

	guildID := ""
	scope := "globales"
	if !cfg.IsProd() && cfg.DevGuildID != "" {
		guildID = cfg.DevGuildID
		scope = "de desarrollo en el servidor " + cfg.DevGuildID
	}

	logger.Info("🔄 Registrando comandos "+scope+"...", "CommandHandler")

	if _, err := ch.SyncCommands(ch.client.Session.State.User.ID, guildID); err != nil {
		logger.Error("Error registrando comandos: "+err.Error(), "CommandHandler")
		return
	}

	logger.Success("✅ Comandos "+scope+" registrados.", "CommandHandler")
}

// ApplicationID fetches the bot's application id over REST.
// Used by tools that never open the gateway, so State.User is empty.
func (ch *CommandHandler) ApplicationID() (string, error) {
	app, err := ch.client.Session.Application("@me")
	if err != nil {
		return "", err
	}
	return app.ID, nil
}

// SyncCommands replaces every command in scope with the current set.
// Commands Discord has that are no longer defined are removed. guildID "" is global.
func (ch *CommandHandler) SyncCommands(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommandBulkOverwrite(appID, guildID, ch.slashCommands)
}

// ListCommands returns the commands Discord currently has in scope
func (ch *CommandHandler) ListCommands(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(appID, guildID)
}

// ClearCommands removes every command in scope
func (ch *CommandHandler) ClearCommands(appID, guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(appID, guildID, []*discordgo.ApplicationCommand{})
	return err
}
