package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	userDatamodel "github.com/frahmantamala/campus-fixit/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return toCredentials(&row), nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// Create assigns the id. A unique-email race surfaces as ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, c *auth.Credentials) error {
	row := userDatamodel.User{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Email:        strings.ToLower(c.Email),
		PasswordHash: c.PasswordHash,
		Role:         string(c.Role),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrEmailTaken
		}
		return err
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	return nil
}

func toCredentials(row *userDatamodel.User) *auth.Credentials {
	return &auth.Credentials{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         coreuser.Role(row.Role),
		CreatedAt:    row.CreatedAt,
	}
}
