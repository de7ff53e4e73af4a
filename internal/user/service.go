package user

import (
	"context"
	"log/slog"
)

type Repository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByID returns internal.ErrUserNotFound when there is no such user.
func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Contacts resolves ids to display contacts. Unknown ids are left out.
func (s *Service) Contacts(ctx context.Context, userIDs []string) (map[string]ContactV1, error) {
	out := make(map[string]ContactV1, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	users, err := s.repo.GetByIDs(ctx, dedupe(userIDs))
	if err != nil {
		s.logger.Error("failed to resolve user contacts", "error", err, "count", len(userIDs))
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.ToContactV1()
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
