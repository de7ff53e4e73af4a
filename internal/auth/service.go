package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

// Repository is the credential side of the user directory.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Credentials, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, c *Credentials) error
}

type Service struct {
	repo       Repository
	tokens     TokenGenerator
	limiter    LoginLimiter
	bcryptCost int
	logger     *slog.Logger
}

type Option func(*Service)

func WithLoginLimiter(l LoginLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func NewService(repo Repository, tokens TokenGenerator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, _ := coreuser.ParseRole(dto.Role)

	exists, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to check email", "error", err)
		return nil, err
	}
	if exists {
		return nil, internal.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	creds := &Credentials{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, creds); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	token, err := s.IssueToken(creds.ID, creds.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", creds.ID, "role", creds.Role)
	return &AuthResult{Token: token, User: creds.Summary()}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, dto.Email)
		if err != nil {
			s.logger.Warn("login limiter unavailable", "error", err)
		} else if !allowed {
			return nil, internal.ErrTooManyAttempts
		}
	}

	creds, err := s.repo.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.recordFailure(ctx, dto.Email)
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user", "error", err)
		return nil, err
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.recordFailure(ctx, dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, dto.Email); err != nil {
			s.logger.Warn("failed to reset login attempts", "error", err)
		}
	}

	token, err := s.IssueToken(creds.ID, creds.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: creds.Summary()}, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("failed to record login failure", "error", err)
	}
}

func (s *Service) IssueToken(userID string, role coreuser.Role) (string, error) {
	token, err := s.tokens.Generate(userID, role)
	if err != nil {
		return "", internal.NewInternalError("failed to issue token", err)
	}
	return token, nil
}

func (s *Service) VerifyToken(token string) (internal.Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return internal.Identity{}, err
	}
	return internal.Identity{UserID: claims.ID, Role: coreuser.Role(claims.Role)}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
