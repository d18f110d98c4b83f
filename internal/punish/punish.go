// Package punish applies escalation decisions against the chat platform.
package punish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/escalation"
	"github.com/PancyStudios/PancyModGo/internal/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

var (
	// ErrExecutorDegraded marks a punishment that was attempted but not confirmed.
	ErrExecutorDegraded = errors.New("castigo no confirmado")
	// ErrSubjectGone is returned by a Surface when the member is no longer in the guild.
	ErrSubjectGone = errors.New("el miembro ya no está en el servidor")
)

// DefaultTimeout bounds every call to the Surface when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Surface is the platform moderation API
type Surface interface {
	// Suspend prevents the subject from talking for d, starting now.
	Suspend(ctx context.Context, guildID, subjectID string, d time.Duration) error
	// Remove bans the subject permanently with the given reason.
	Remove(ctx context.Context, guildID, subjectID, reason string) error
}

// Status summarizes what happened to a decision
type Status int

const (
	StatusNothing Status = iota
	StatusApplied
	StatusAlreadyApplied
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusNothing:
		return "nothing"
	case StatusApplied:
		return "applied"
	case StatusAlreadyApplied:
		return "already_applied"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Outcome is the result of Apply. Err is set (wrapping ErrExecutorDegraded)
// only when Status is StatusDegraded.
type Outcome struct {
	Decision escalation.Decision
	Status   Status
	Err      error
}

// Degraded reports whether the punishment could not be confirmed
func (o Outcome) Degraded() bool {
	return o.Status == StatusDegraded
}

// Executor applies decisions through a Surface. It never retries.
type Executor struct {
	surface Surface
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewExecutor creates an executor; timeout <= 0 uses DefaultTimeout. m may be nil.
func NewExecutor(surface Surface, timeout time.Duration, m *metrics.Metrics) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{surface: surface, timeout: timeout, metrics: m}
}

// Apply carries out d for the subject. Failures are returned inside the
// Outcome and never as a panic or error.
func (e *Executor) Apply(ctx context.Context, d escalation.Decision, guildID, subjectID, reason string) (out Outcome) {
	out = Outcome{Decision: d, Status: StatusNothing}
	if d.IsNone() {
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Pánico aplicando %s a %s: %v", d.Kind, subjectID, r), "Punish")
			out = degraded(d, fmt.Errorf("panic: %v", r))
		}
		e.metrics.IncrementPunishment(d.Kind.String(), out.Status.String())
	}()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var err error
	switch d.Kind {
	case escalation.TemporarySuspension:
		err = e.surface.Suspend(callCtx, guildID, subjectID, d.Duration)
	case escalation.PermanentRemoval:
		err = e.surface.Remove(callCtx, guildID, subjectID, reason)
		if errors.Is(err, ErrSubjectGone) {
			logger.Info(fmt.Sprintf("El usuario %s ya no está en el servidor, ban omitido", subjectID), "Punish")
			out.Status = StatusAlreadyApplied
			return out
		}
	default:
		return degraded(d, fmt.Errorf("tipo de castigo desconocido: %s", d.Kind))
	}

	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo aplicar %s a %s: %v", d.Kind, subjectID, err), "Punish")
		return degraded(d, err)
	}

	out.Status = StatusApplied
	return out
}

func degraded(d escalation.Decision, cause error) Outcome {
	return Outcome{
		Decision: d,
		Status:   StatusDegraded,
		Err:      fmt.Errorf("%w: %w", ErrExecutorDegraded, cause),
	}
}
