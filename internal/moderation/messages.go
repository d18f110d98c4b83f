package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyModGo/internal/escalation"
	"github.com/PancyStudios/PancyModGo/internal/ledger"
	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

const (
	// Discord rejects message content longer than this
	maxReplyRunes = 2000
	// Reasons are cut to this length inside lists
	maxListReason = 150

	msgStoreUnavailable = "❌ No se pudo acceder al registro de advertencias. Inténtalo de nuevo más tarde."
	msgUnexpected       = "❌ Ocurrió un error inesperado."
)

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

func warnedLine(w models.Warning, count int) string {
	return fmt.Sprintf("⚠️ %s fue advertido por: %s (advertencia #%d)", mention(w.SubjectID), w.Reason, count)
}

func punishmentLine(subjectID string, count int, out punish.Outcome) string {
	if out.Degraded() {
		return fmt.Sprintf("⚠️ Se intentó aplicar %s a %s, pero no se pudo confirmar.", kindName(out.Decision), mention(subjectID))
	}

	switch out.Decision.Kind {
	case escalation.TemporarySuspension:
		return fmt.Sprintf("🔇 %s alcanzó %d advertencias y fue aislado por %s.", mention(subjectID), count, minutes(out.Decision.Duration))
	case escalation.PermanentRemoval:
		if out.Status == punish.StatusAlreadyApplied {
			return fmt.Sprintf("🔨 %s alcanzó %d advertencias, pero ya no está en el servidor.", mention(subjectID), count)
		}
		return fmt.Sprintf("🔨 %s alcanzó %d advertencias y fue baneado del servidor.", mention(subjectID), count)
	}
	return ""
}

func kindName(d escalation.Decision) string {
	switch d.Kind {
	case escalation.TemporarySuspension:
		return "un aislamiento de " + minutes(d.Duration)
	case escalation.PermanentRemoval:
		return "un baneo"
	}
	return "un castigo"
}

func minutes(d time.Duration) string {
	m := int(d.Minutes())
	if m == 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", m)
}

func warningsList(subjectID string, list []models.Warning) string {
	if len(list) == 0 {
		return fmt.Sprintf("✅ %s no tiene advertencias.", mention(subjectID))
	}

	lines := make([]string, len(list))
	for i, w := range list {
		lines[i] = fmt.Sprintf("%d. %s • %s", i+1, shorten(w.Reason, maxListReason), timestamp(w.CreatedAt))
	}
	return capLines(fmt.Sprintf("📋 Advertencias de %s (%d):", mention(subjectID), len(list)), lines)
}

func clearedLine(subjectID string, removed int) string {
	return fmt.Sprintf("🧹 Se eliminaron todas las advertencias de %s (%d).", mention(subjectID), removed)
}

func historyList(list []models.Warning) string {
	if len(list) == 0 {
		return "📭 No hay historial de moderación."
	}

	lines := make([]string, len(list))
	for i, w := range list {
		lines[i] = fmt.Sprintf("• %s: %s • %s", mention(w.SubjectID), shorten(w.Reason, maxListReason), timestamp(w.CreatedAt))
	}
	return capLines("📜 Historial de moderación reciente:", lines)
}

// capLines joins header and lines, dropping the tail once the reply would
// exceed maxReplyRunes. Dropped lines are summarized in a final line.
func capLines(header string, lines []string) string {
	var b strings.Builder
	b.WriteString(header)
	used := utf8.RuneCountInString(header)

	for i, line := range lines {
		n := 1 + utf8.RuneCountInString(line)
		reserve := 0
		if left := len(lines) - i - 1; left > 0 {
			reserve = 1 + utf8.RuneCountInString(moreLine(left))
		}
		if used+n+reserve > maxReplyRunes {
			b.WriteString("\n" + moreLine(len(lines)-i))
			break
		}
		b.WriteString("\n" + line)
		used += n
	}
	return b.String()
}

func moreLine(n int) string {
	return fmt.Sprintf("… y %d más", n)
}

// shorten cuts s to at most n runes, marking the cut with an ellipsis
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// UserMessage converts an operation error into the text shown to the moderator
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ledger.ErrValidation):
		return "❌ " + validationDetail(err)
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return msgStoreUnavailable
	default:
		return msgUnexpected
	}
}

func validationDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return ledger.ErrValidation.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
