// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with slash-command dispatch, permission gating and the
// moderation calls used by the warning pipeline.
package discord

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Route discordgo's internal logging through the house logger
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		default:
			logger.Debug(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	StartTime      time.Time
	ready          atomic.Bool
}

// CommandCollection maps registry keys ("mod.warn") to commands
type CommandCollection struct {
	commands map[string]*Command
	mu       sync.RWMutex
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{
		commands: make(map[string]*Command),
	}
}

// Set adds or updates a command
func (cc *CommandCollection) Set(name string, cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.commands[name] = cmd
}

// Get retrieves a command by name
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[name]
	return cmd, ok
}

// Size returns the number of commands
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// NewClient creates a client without connecting; Start opens the gateway
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Members intent is needed to resolve the targets of timeouts and bans
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &ExtendedClient{
		Session:  session,
		Commands: NewCommandCollection(),
	}
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Start registers the core handlers and opens the gateway connection
func (c *ExtendedClient) Start() error {
	logger.System(fmt.Sprintf("Iniciando cliente con %d comandos cargados", c.Commands.Size()), "Client")

	c.EventHandler.RegisterEvent("ready:commands", func(s *discordgo.Session, r *discordgo.Ready) {
		c.ready.Store(true)
		logger.Success("Bot conectado como: "+r.User.Username, "Client")
		c.CommandHandler.RegisterCommands()
	})
	c.EventHandler.RegisterEvent("interactionCreate", c.handleInteraction)

	c.StartTime = time.Now()

	return c.Session.Open()
}

// resolveCommandName builds the registry key for an interaction, e.g. "mod.warn"
func resolveCommandName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	if len(data.Options) == 0 {
		return name
	}

	opt := data.Options[0]
	switch opt.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(opt.Options) > 0 {
			return name + "." + opt.Name + "." + opt.Options[0].Name
		}
	case discordgo.ApplicationCommandOptionSubCommand:
		return name + "." + opt.Name
	}
	return name
}

// handleInteraction dispatches slash commands through the permission middleware
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandName := resolveCommandName(i.ApplicationCommandData())

	cmd, ok := c.Commands.Get(commandName)
	if !ok {
		logger.Warn("Comando no encontrado: "+commandName, "Client")
		return
	}

	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
	}

	if err := c.PermissionMiddleware(ctx, cmd); err != nil {
		logger.Debug(fmt.Sprintf("Comando %s rechazado: %v", commandName, err), "Client")
		return
	}

	if err := cmd.Run(ctx); err != nil {
		logger.Error("Error ejecutando el comando "+commandName+": "+err.Error(), "Client")
	}
}

// Stop detaches every handler and closes the gateway session
func (c *ExtendedClient) Stop() error {
	c.ready.Store(false)
	c.EventHandler.RemoveAll()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady reports whether the gateway session is up
func (c *ExtendedClient) IsReady() bool {
	return c.ready.Load()
}

// GuildCount returns the number of guilds in the session state
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}
