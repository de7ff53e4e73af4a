package issue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/core/events"
	"github.com/frahmantamala/campus-fixit/internal/user"
)

// Repository interface defines the data access methods for issues
type Repository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id string) (*Issue, error)
	// List returns issues newest first. An empty creatorID lists everyone's.
	List(ctx context.Context, creatorID string, filter ListFilter) ([]*Issue, error)
	UpdateStatus(ctx context.Context, issue *Issue) error
	AppendRemark(ctx context.Context, issueID string, remark Remark, updatedAt time.Time) error
}

type StatsReader interface {
	Stats(ctx context.Context) (*StatsV1, error)
}

// ContactResolver expands creator ids for display.
type ContactResolver interface {
	Contacts(ctx context.Context, userIDs []string) (map[string]user.ContactV1, error)
}

// Service handles issue business logic
type Service struct {
	repo      Repository
	stats     StatsReader
	contacts  ContactResolver
	publisher events.Publisher
	sanitizer TextSanitizer
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithStatsReader(r StatsReader) Option {
	return func(s *Service) { s.stats = r }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithSanitizer(t TextSanitizer) Option {
	return func(s *Service) { s.sanitizer = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new issue service
func NewService(repo Repository, contacts ContactResolver, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		contacts:  contacts,
		sanitizer: NewPlainTextSanitizer(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsValidID reports whether id is structurally an issue identifier.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Service) CreateIssue(ctx context.Context, dto CreateIssueDTO, creatorID string) (*IssueV1, error) {
	dto.Title = s.sanitizer.Sanitize(dto.Title)
	dto.Description = s.sanitizer.Sanitize(dto.Description)
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("issue validation failed", "error", err, "user_id", creatorID)
		return nil, err
	}

	issue := NewIssue(dto, creatorID, s.now())
	if err := s.repo.Create(ctx, issue); err != nil {
		s.logger.Error("failed to create issue", "error", err, "user_id", creatorID)
		return nil, err
	}

	s.logger.Info("issue created",
		"issue_id", issue.ID,
		"user_id", creatorID,
		"category", issue.Category)

	s.publish(ctx, events.NewIssueCreatedEvent(issue.ID, string(issue.Category), creatorID))

	return s.expandOne(ctx, issue)
}

func (s *Service) ListForUser(ctx context.Context, userID string, filter ListFilter) ([]IssueV1, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	issues, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list user issues", "error", err, "user_id", userID)
		return nil, err
	}
	return s.expand(ctx, issues)
}

func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]IssueV1, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	issues, err := s.repo.List(ctx, "", filter)
	if err != nil {
		s.logger.Error("failed to list issues", "error", err)
		return nil, err
	}
	return s.expand(ctx, issues)
}

// GetByID fails with ErrInvalidIssueID for a malformed id and
// ErrIssueNotFound when nothing matches.
func (s *Service) GetByID(ctx context.Context, id string) (*Issue, error) {
	if !IsValidID(id) {
		return nil, internal.ErrInvalidIssueID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Expand(ctx context.Context, issue *Issue) (*IssueV1, error) {
	return s.expandOne(ctx, issue)
}

// UpdateStatus treats a malformed id as a missing issue.
func (s *Service) UpdateStatus(ctx context.Context, id string, dto UpdateStatusDTO, adminID string) (*IssueV1, error) {
	if !IsValidID(id) {
		return nil, internal.ErrIssueNotFound
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := issue.Status
	if err := issue.ApplyStatus(Status(dto.Status), s.now()); err != nil {
		return nil, internal.NewValidationFieldError("status", err.Error(), internal.ErrCodeInvalidStatus)
	}

	if err := s.repo.UpdateStatus(ctx, issue); err != nil {
		s.logger.Error("failed to update issue status", "error", err, "issue_id", id)
		return nil, err
	}

	s.logger.Info("issue status updated",
		"issue_id", id,
		"from", from,
		"to", issue.Status,
		"admin_id", adminID)

	s.publish(ctx, events.NewIssueStatusChangedEvent(id, string(from), string(issue.Status), adminID))

	return s.expandOne(ctx, issue)
}

func (s *Service) AddRemark(ctx context.Context, id string, dto AddRemarkDTO, authorID string) (*IssueV1, error) {
	if !IsValidID(id) {
		return nil, internal.ErrIssueNotFound
	}
	dto.Text = s.sanitizer.Sanitize(dto.Text)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	remark := issue.AddRemark(dto.Text, authorID, now)
	if err := s.repo.AppendRemark(ctx, id, remark, now); err != nil {
		s.logger.Error("failed to add remark", "error", err, "issue_id", id)
		return nil, err
	}

	s.logger.Info("remark added", "issue_id", id, "admin_id", authorID, "remarks", len(issue.Remarks))
	s.publish(ctx, events.NewIssueRemarkAddedEvent(id, authorID))

	return s.expandOne(ctx, issue)
}

func (s *Service) Stats(ctx context.Context) (*StatsV1, error) {
	if s.stats == nil {
		return nil, internal.NewInternalError("issue stats are not configured", nil)
	}
	st, err := s.stats.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute issue stats", "error", err)
		return nil, err
	}
	return st, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

func (s *Service) expandOne(ctx context.Context, issue *Issue) (*IssueV1, error) {
	out, err := s.expand(ctx, []*Issue{issue})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) expand(ctx context.Context, issues []*Issue) ([]IssueV1, error) {
	ids := make([]string, 0, len(issues))
	for _, i := range issues {
		ids = append(ids, i.CreatedBy)
	}

	contacts := map[string]user.ContactV1{}
	if s.contacts != nil && len(ids) > 0 {
		var err error
		contacts, err = s.contacts.Contacts(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]IssueV1, len(issues))
	for k, i := range issues {
		out[k] = i.ToV1(contacts[i.CreatedBy])
	}
	return out, nil
}
