// Package events provides event handlers for the bot
package events

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const presence = "🛡️ Moderando con /mod"

// RegisterReadyEvent sets the presence and reports guilds whose audit log has nowhere to go
func RegisterReadyEvent(client *discord.ExtendedClient, resolver audit.Resolver) {
	client.EventHandler.OnReady("ready:presence", func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		if missing := guildsWithoutAudit(r.Guilds, resolver); len(missing) > 0 {
			logger.Warn(fmt.Sprintf("Servidores sin canal de auditoría: %s", strings.Join(missing, ", ")), "Ready")
		}

		if err := s.UpdateWatchStatus(0, presence); err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		}
	})
}

func guildsWithoutAudit(guilds []*discordgo.Guild, resolver audit.Resolver) []string {
	if resolver == nil {
		return nil
	}
	var missing []string
	for _, g := range guilds {
		if _, ok := resolver.Resolve(g.ID); !ok {
			missing = append(missing, g.ID)
		}
	}
	return missing
}
