package aggregates

import (
	"strings"
	"time"
	"unicode"

	"github.com/yungbote/careerbridge-backend/internal/observability"
)

// Hooks receives the outcome of every plan and conversation write. Names are
// the aggregate op strings ("Planning.Plan.CreateTree").
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate writes under the labels used by the
// HTTP metrics, e.g. "plan.create_tree" or "conversation.append_messages".
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(operationLabel(name), strings.TrimSpace(status), dur)
}

// IncConflict on plan.create_tree means the one-active-plan index fired.
func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(operationLabel(name))
}

func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(operationLabel(name))
}

// operationLabel drops the module prefix and snake-cases the rest:
// "Chat.Conversation.AppendMessages" becomes "conversation.append_messages".
func operationLabel(op string) string {
	parts := strings.Split(strings.TrimSpace(op), ".")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = snakeCase(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "aggregate.write"
	}
	return strings.Join(out, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
