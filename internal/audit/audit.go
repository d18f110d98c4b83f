// Package audit emits moderation records to a log channel and the event bus.
//
// Emission is fire-and-forget: Emit returns immediately, delivery runs in its
// own goroutine with its own deadline and is not cancelled with the caller's
// context. Failures are logged and counted, never returned to the caller.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/metrics"
	apperrors "github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/google/uuid"
)

// ErrNotifierFailure wraps every delivery failure
var ErrNotifierFailure = errors.New("no se pudo enviar el registro de auditoría")

// DefaultTimeout bounds one delivery (channel + sinks)
const DefaultTimeout = 10 * time.Second

// Resolver maps a guild to its audit channel
type Resolver interface {
	Resolve(guildID string) (channelID string, ok bool)
}

// Sender posts text to a channel
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
}

// Sink receives a copy of every delivered event
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Event is one audit record
type Event struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guildId"`
	ChannelID string    `json:"channelId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// StaticResolver resolves from a fixed guild→channel map with an optional fallback
type StaticResolver struct {
	channels map[string]string
	fallback string
}

func NewStaticResolver(channels map[string]string, fallback string) StaticResolver {
	cp := make(map[string]string, len(channels))
	for k, v := range channels {
		cp[k] = v
	}
	return StaticResolver{channels: cp, fallback: strings.TrimSpace(fallback)}
}

func (r StaticResolver) Resolve(guildID string) (string, bool) {
	if ch, ok := r.channels[guildID]; ok && ch != "" {
		return ch, true
	}
	if r.fallback != "" {
		return r.fallback, true
	}
	return "", false
}

// Notifier delivers audit messages
type Notifier struct {
	resolver Resolver
	sender   Sender
	sinks    []Sink
	timeout  time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewNotifier creates a notifier. timeout <= 0 uses DefaultTimeout; m may be nil.
func NewNotifier(resolver Resolver, sender Sender, timeout time.Duration, m *metrics.Metrics, sinks ...Sink) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		resolver: resolver,
		sender:   sender,
		sinks:    sinks,
		timeout:  timeout,
		metrics:  m,
		now:      time.Now,
	}
}

// Emit schedules delivery of message and returns immediately.
func (n *Notifier) Emit(ctx context.Context, guildID, message string) {
	if n == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	n.wg.Add(1)
	apperrors.Go(func() {
		defer n.wg.Done()

		dctx, cancel := context.WithTimeout(detached, n.timeout)
		defer cancel()

		if err := n.Deliver(dctx, guildID, message); err != nil {
			n.metrics.IncrementAuditFailure()
			logger.Warn(err.Error(), "Audit")
		}
	})
}

// Deliver sends message synchronously. An unresolved guild is skipped silently.
func (n *Notifier) Deliver(ctx context.Context, guildID, message string) error {
	channelID, ok := n.resolver.Resolve(guildID)
	if !ok {
		logger.Debug(fmt.Sprintf("Sin canal de auditoría para el servidor %s", guildID), "Audit")
		return nil
	}

	ev := Event{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		Message:   message,
		Timestamp: n.now().UTC(),
	}

	var errs []error
	if err := n.sender.Send(ctx, channelID, message); err != nil {
		errs = append(errs, fmt.Errorf("canal %s: %w", channelID, err))
	}
	for _, s := range n.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrNotifierFailure, errors.Join(errs...))
	}
	return nil
}

// Wait blocks until every emission started so far has finished
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
