package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-fixit/internal/core/events"
	"github.com/frahmantamala/campus-fixit/internal/issue"
	"github.com/frahmantamala/campus-fixit/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Publish sample issue events through the audit log for debugging`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample issue event",
	Long:  `Publish one of ` + strings.Join(events.IssueEventTypes, ", ") + ` to an in-process bus with the audit log subscribed`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(context.Background(), args[0])
	},
}

var eventActor string

func sampleEvent(eventType, actor string) (events.Event, error) {
	issueID := uuid.NewString()
	switch eventType {
	case events.EventTypeIssueCreated:
		return events.NewIssueCreatedEvent(issueID, "Electrical", actor), nil
	case events.EventTypeIssueStatusChanged:
		return events.NewIssueStatusChangedEvent(issueID, string(issue.StatusOpen), string(issue.StatusInProgress), actor), nil
	case events.EventTypeIssueRemarkAdded:
		return events.NewIssueRemarkAddedEvent(issueID, actor), nil
	default:
		return nil, fmt.Errorf("unknown event type %q, expected one of %s", eventType, strings.Join(events.IssueEventTypes, ", "))
	}
}

func publishSampleEvent(ctx context.Context, eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType, eventActor)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	issue.NewAuditLog(lg).Register(bus)

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	bus.Wait()
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "cli", "user id recorded as the actor")
	eventCmd.AddCommand(publishEventCmd)
}
