package issue

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/campus-fixit/internal/core/events"
)

// Subscriber is the part of the event bus the audit log needs.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// AuditLog writes one structured line per issue lifecycle event.
type AuditLog struct {
	logger *slog.Logger
}

func NewAuditLog(logger *slog.Logger) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLog{logger: logger.With("component", "issue_audit")}
}

// Register subscribes the audit log to every issue event type.
func (a *AuditLog) Register(bus Subscriber) {
	for _, t := range events.IssueEventTypes {
		bus.Subscribe(t, a.Handle)
	}
}

func (a *AuditLog) Handle(ctx context.Context, e events.Event) error {
	attrs := []any{
		"event_id", e.EventID(),
		"event_type", e.EventType(),
		"occurred_at", e.OccurredAt(),
	}
	switch ev := e.(type) {
	case *events.IssueCreatedEvent:
		attrs = append(attrs, "issue_id", ev.IssueID, "category", ev.Category, "user_id", ev.CreatedBy)
	case *events.IssueStatusChangedEvent:
		attrs = append(attrs, "issue_id", ev.IssueID, "from", ev.From, "to", ev.To, "user_id", ev.ChangedBy)
	case *events.IssueRemarkAddedEvent:
		attrs = append(attrs, "issue_id", ev.IssueID, "user_id", ev.AddedBy)
	default:
		attrs = append(attrs, "payload", e.Payload())
	}
	a.logger.InfoContext(ctx, "issue audit", attrs...)
	return nil
}
