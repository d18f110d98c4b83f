package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/ledger"
)

const (
	// HistoryTopic answers with the most recent warnings across all users
	HistoryTopic = "moderation/history"
	// WarningsTopic answers with every warning of a single user
	WarningsTopic = "moderation/warnings"

	maxRemoteLimit = 100
	remoteTimeout  = 5 * time.Second
)

// HistoryRequest serves HistoryTopic. The optional "limit" field is capped at 100.
func (s *Service) HistoryRequest(payload map[string]interface{}) (interface{}, error) {
	limit := ledger.DefaultHistoryLimit
	if v, ok := payload["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}
	if limit > maxRemoteLimit {
		limit = maxRemoteLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	return s.Recent(ctx, limit)
}

// WarningsRequest serves WarningsTopic and requires "subjectId"
func (s *Service) WarningsRequest(payload map[string]interface{}) (interface{}, error) {
	subjectID, _ := payload["subjectId"].(string)
	if subjectID == "" {
		return nil, fmt.Errorf("%w: falta subjectId", ledger.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	list, err := s.Warnings(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"subjectId": subjectID,
		"count":     len(list),
		"warnings":  list,
	}, nil
}
