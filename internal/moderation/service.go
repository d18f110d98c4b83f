// Package moderation runs the moderator-facing warning commands.
//
// Warn records a warning, recomputes the escalation from the live count, applies
// the resulting punishment and hands a copy of the response to the audit notifier.
// Ledger failures abort the command before any punishment is considered; punishment
// and audit failures never turn a recorded warning into an error.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/internal/escalation"
	"github.com/PancyStudios/PancyModGo/internal/ledger"
	"github.com/PancyStudios/PancyModGo/internal/metrics"
	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Service is the moderation orchestrator
type Service struct {
	store    ledger.Store
	executor *punish.Executor
	notifier *audit.Notifier
	metrics  *metrics.Metrics
}

// NewService wires the orchestrator. notifier and m may be nil.
func NewService(store ledger.Store, executor *punish.Executor, notifier *audit.Notifier, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		executor: executor,
		notifier: notifier,
		metrics:  m,
	}
}

// WarnRequest is the input of Warn
type WarnRequest struct {
	GuildID     string
	SubjectID   string
	ModeratorID string
	Reason      string
}

// WarnResult describes a recorded warning and its consequences
type WarnResult struct {
	Warning models.Warning
	Count   int
	Outcome punish.Outcome
	Message string
}

// ClearResult describes a clear command
type ClearResult struct {
	Removed int
	Message string
}

// Warn records a warning and applies the automatic punishment for the new count
func (s *Service) Warn(ctx context.Context, req WarnRequest) (WarnResult, error) {
	start := time.Now()
	defer s.metrics.ObserveWarn(start)

	nw := ledger.NewWarning{
		GuildID:     req.GuildID,
		SubjectID:   strings.TrimSpace(req.SubjectID),
		ModeratorID: strings.TrimSpace(req.ModeratorID),
		Reason:      strings.TrimSpace(req.Reason),
	}
	if err := nw.Validate(); err != nil {
		return WarnResult{}, err
	}

	w, err := s.store.Insert(ctx, nw)
	if err != nil {
		s.metrics.IncrementLedgerError("insert")
		logger.Error(fmt.Sprintf("Error guardando advertencia de %s: %v", nw.SubjectID, err), "Moderation")
		return WarnResult{}, err
	}
	s.metrics.IncrementWarningsRecorded()

	count, err := s.store.CountFor(ctx, w.SubjectID)
	if err != nil {
		s.metrics.IncrementLedgerError("count")
		logger.Error(fmt.Sprintf("Error contando advertencias de %s: %v", w.SubjectID, err), "Moderation")
		return WarnResult{}, err
	}

	decision := escalation.Evaluate(count)
	outcome := s.executor.Apply(ctx, decision, req.GuildID, w.SubjectID, w.Reason)

	lines := []string{warnedLine(w, count)}
	if line := punishmentLine(w.SubjectID, count, outcome); line != "" {
		lines = append(lines, line)
	}
	message := strings.Join(lines, "\n")

	logger.Info(fmt.Sprintf("Advertencia #%d para %s por %s (total %d, castigo %s/%s)",
		w.ID, w.SubjectID, w.ModeratorID, count, decision.Kind, outcome.Status), "Moderation")

	s.notifier.Emit(ctx, req.GuildID, message)

	return WarnResult{
		Warning: w,
		Count:   count,
		Outcome: outcome,
		Message: message,
	}, nil
}

// Warnings returns the subject's warnings, oldest first
func (s *Service) Warnings(ctx context.Context, subjectID string) ([]models.Warning, error) {
	list, err := s.store.ListFor(ctx, subjectID)
	if err != nil {
		s.metrics.IncrementLedgerError("list")
		return nil, err
	}
	return list, nil
}

// ViewWarnings renders the subject's warnings
func (s *Service) ViewWarnings(ctx context.Context, subjectID string) (string, error) {
	list, err := s.Warnings(ctx, subjectID)
	if err != nil {
		return "", err
	}
	return warningsList(subjectID, list), nil
}

// ClearWarnings deletes every warning of the subject. Clearing nothing is a success.
func (s *Service) ClearWarnings(ctx context.Context, subjectID string) (ClearResult, error) {
	removed, err := s.store.ClearFor(ctx, subjectID)
	if err != nil {
		s.metrics.IncrementLedgerError("clear")
		return ClearResult{}, err
	}
	s.metrics.AddWarningsCleared(removed)
	logger.Info(fmt.Sprintf("Se eliminaron %d advertencias de %s", removed, subjectID), "Moderation")

	return ClearResult{Removed: removed, Message: clearedLine(subjectID, removed)}, nil
}

// Recent returns the newest warnings across all subjects, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Warning, error) {
	list, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.metrics.IncrementLedgerError("recent")
		return nil, err
	}
	return list, nil
}

// History renders the last ledger.DefaultHistoryLimit warnings
func (s *Service) History(ctx context.Context) (string, error) {
	list, err := s.Recent(ctx, ledger.DefaultHistoryLimit)
	if err != nil {
		return "", err
	}
	return historyList(list), nil
}

// Ping reports whether the ledger is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
