package discord

import (
	"github.com/bwmarrin/discordgo"
)

// CommandContext provides context for command execution
type CommandContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
}

// Command represents a Discord slash command
type Command struct {
	Name            string
	Description     string
	Category        string
	Options         []*discordgo.ApplicationCommandOption
	UserPermissions int64
	BotPermissions  int64
	GuildOnly       bool
	Run             CommandRunFunc
}

// CommandRunFunc is the function type for command execution
type CommandRunFunc func(ctx *CommandContext) error

// NewCommand creates a new Command with required fields
func NewCommand(name, description, category string, run CommandRunFunc) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithOptions sets the command options
func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

// WithUserPermissions sets the permissions the invoking member needs
func (c *Command) WithUserPermissions(perms int64) *Command {
	c.UserPermissions = perms
	return c
}

// WithBotPermissions sets the permissions the bot needs in the channel
func (c *Command) WithBotPermissions(perms int64) *Command {
	c.BotPermissions = perms
	return c
}

// InGuild marks the command as usable only inside a guild
func (c *Command) InGuild() *Command {
	c.GuildOnly = true
	return c
}

// ToApplicationCommand converts the command to a Discord application command.
// Member permissions become the default visibility; guild-only commands are hidden in DMs.
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	appCmd := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
	if c.UserPermissions != 0 {
		perms := c.UserPermissions
		appCmd.DefaultMemberPermissions = &perms
	}
	if c.GuildOnly {
		dm := false
		appCmd.DMPermission = &dm
	}
	return appCmd
}

func (ctx *CommandContext) respond(kind discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: kind,
		Data: data,
	})
}

// Reply sends a public reply
func (ctx *CommandContext) Reply(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Content: content,
	})
}

// ReplyEphemeral sends a reply visible only to the invoking user
func (ctx *CommandContext) ReplyEphemeral(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// ReplyEphemeralEmbed sends an embed visible only to the invoking user
func (ctx *CommandContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// Defer acknowledges the interaction; the reply comes later through EditReply
func (ctx *CommandContext) Defer() error {
	return ctx.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource, nil)
}

// DeferEphemeral is Defer with an ephemeral final reply
func (ctx *CommandContext) DeferEphemeral() error {
	return ctx.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource, &discordgo.InteractionResponseData{
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

// EditReply replaces the content of a deferred or sent reply. Only the users
// in mentionUsers are pinged; @everyone and role mentions stay inert.
func (ctx *CommandContext) EditReply(content string, mentionUsers ...string) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, replyEdit(content, mentionUsers))
	return err
}

func replyEdit(content string, mentionUsers []string) *discordgo.WebhookEdit {
	return &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: mentionUsers},
	}
}

// GetOption retrieves an option by name, searching inside subcommands
func (ctx *CommandContext) GetOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return findOption(ctx.Interaction.ApplicationCommandData().Options, name)
}

func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if found := findOption(opt.Options, name); found != nil {
			return found
		}
	}
	return nil
}

// GetStringOption returns a string option, or "" when absent
func (ctx *CommandContext) GetStringOption(name string) string {
	if opt := ctx.GetOption(name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

// GetIntOption returns an integer option, or 0 when absent
func (ctx *CommandContext) GetIntOption(name string) int64 {
	if opt := ctx.GetOption(name); opt != nil {
		return opt.IntValue()
	}
	return 0
}

// GetUserOption returns a user option. The resolved payload is preferred so
// no REST call is needed; the session lookup is the fallback.
func (ctx *CommandContext) GetUserOption(name string) *discordgo.User {
	opt := ctx.GetOption(name)
	if opt == nil {
		return nil
	}
	if id, ok := opt.Value.(string); ok {
		if resolved := ctx.Interaction.ApplicationCommandData().Resolved; resolved != nil {
			if u, ok := resolved.Users[id]; ok {
				return u
			}
		}
	}
	return opt.UserValue(ctx.Session)
}

// User returns the user who triggered the interaction
func (ctx *CommandContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Member returns the invoking guild member, nil in DMs
func (ctx *CommandContext) Member() *discordgo.Member {
	return ctx.Interaction.Member
}
