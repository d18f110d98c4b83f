// Package events provides a registry for organizing bot events.
package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, resolver audit.Resolver) {
	RegisterReadyEvent(client, resolver)

	logger.System(fmt.Sprintf("📋 %d eventos registrados", client.EventHandler.Count()), "Events")
}
