// Package escalation maps a subject's warning count to an automatic punishment.
package escalation

import (
	"fmt"
	"time"
)

const (
	// SuspensionThreshold is the exact count that triggers a temporary timeout
	SuspensionThreshold = 3
	// RemovalThreshold is the count from which every warning triggers a ban
	RemovalThreshold = 5
	// SuspensionDuration is how long the automatic timeout lasts
	SuspensionDuration = 10 * time.Minute
)

// Kind identifies the punishment carried by a Decision
type Kind int

const (
	None Kind = iota
	TemporarySuspension
	PermanentRemoval
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case TemporarySuspension:
		return "timeout"
	case PermanentRemoval:
		return "ban"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is the punishment derived from a count. It is never stored.
type Decision struct {
	Kind     Kind
	Duration time.Duration // only set for TemporarySuspension
}

// Evaluate returns the decision for the count observed after an insert.
// The suspension fires only at exactly SuspensionThreshold; removal keeps firing
// for every count at or above RemovalThreshold.
func Evaluate(count int) Decision {
	switch {
	case count >= RemovalThreshold:
		return Decision{Kind: PermanentRemoval}
	case count == SuspensionThreshold:
		return Decision{Kind: TemporarySuspension, Duration: SuspensionDuration}
	default:
		return Decision{Kind: None}
	}
}

// IsNone reports whether the decision requires no action
func (d Decision) IsNone() bool {
	return d.Kind == None
}
