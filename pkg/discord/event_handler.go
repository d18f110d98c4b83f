package discord

import (
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler keeps track of the gateway handlers attached to the session
type EventHandler struct {
	client   *ExtendedClient
	mu       sync.Mutex
	names    []string
	removers []func()
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{client: client}
}

// RegisterEvent attaches handler to the session. handler must be one of the
// func signatures discordgo dispatches on, e.g. func(*discordgo.Session, *discordgo.Ready).
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	remove := eh.client.Session.AddHandler(handler)

	eh.mu.Lock()
	eh.names = append(eh.names, name)
	eh.removers = append(eh.removers, remove)
	eh.mu.Unlock()

	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Count returns how many handlers are attached
func (eh *EventHandler) Count() int {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	return len(eh.removers)
}

// Names returns the registered handler names in registration order
func (eh *EventHandler) Names() []string {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	return append([]string(nil), eh.names...)
}

// RemoveAll detaches every handler registered through this EventHandler
func (eh *EventHandler) RemoveAll() {
	eh.mu.Lock()
	removers := eh.removers
	eh.names, eh.removers = nil, nil
	eh.mu.Unlock()

	for _, remove := range removers {
		remove()
	}
}

// ReadyHandler is called when the bot is ready
type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(name string, handler ReadyHandler) {
	// discordgo dispatches on the unnamed func type
	eh.RegisterEvent(name, (func(*discordgo.Session, *discordgo.Ready))(handler))
}
