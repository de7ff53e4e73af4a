package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeIssueCreated       = "issue.created"
	EventTypeIssueStatusChanged = "issue.status_changed"
	EventTypeIssueRemarkAdded   = "issue.remark_added"
)

var IssueEventTypes = []string{
	EventTypeIssueCreated,
	EventTypeIssueStatusChanged,
	EventTypeIssueRemarkAdded,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type IssueCreatedEvent struct {
	BaseEvent
	IssueID   string `json:"issue_id"`
	Category  string `json:"category"`
	CreatedBy string `json:"created_by"`
}

func NewIssueCreatedEvent(issueID, category, createdBy string) *IssueCreatedEvent {
	return &IssueCreatedEvent{
		BaseEvent: newBase(EventTypeIssueCreated, map[string]interface{}{
			"issue_id":   issueID,
			"category":   category,
			"created_by": createdBy,
		}),
		IssueID:   issueID,
		Category:  category,
		CreatedBy: createdBy,
	}
}

type IssueStatusChangedEvent struct {
	BaseEvent
	IssueID   string `json:"issue_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	ChangedBy string `json:"changed_by"`
}

func NewIssueStatusChangedEvent(issueID, from, to, changedBy string) *IssueStatusChangedEvent {
	return &IssueStatusChangedEvent{
		BaseEvent: newBase(EventTypeIssueStatusChanged, map[string]interface{}{
			"issue_id":   issueID,
			"from":       from,
			"to":         to,
			"changed_by": changedBy,
		}),
		IssueID:   issueID,
		From:      from,
		To:        to,
		ChangedBy: changedBy,
	}
}

type IssueRemarkAddedEvent struct {
	BaseEvent
	IssueID string `json:"issue_id"`
	AddedBy string `json:"added_by"`
}

func NewIssueRemarkAddedEvent(issueID, addedBy string) *IssueRemarkAddedEvent {
	return &IssueRemarkAddedEvent{
		BaseEvent: newBase(EventTypeIssueRemarkAdded, map[string]interface{}{
			"issue_id": issueID,
			"added_by": addedBy,
		}),
		IssueID: issueID,
		AddedBy: addedBy,
	}
}
