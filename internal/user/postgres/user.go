package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/campus-fixit/internal"
	userDatamodel "github.com/frahmantamala/campus-fixit/internal/core/datamodel/user"
	"github.com/frahmantamala/campus-fixit/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, userID string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) GetByIDs(ctx context.Context, userIDs []string) ([]*user.User, error) {
	if len(userIDs) == 0 {
		return []*user.User{}, nil
	}
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*user.User, len(rows))
	for i := range rows {
		out[i] = user.FromDataModel(&rows[i])
	}
	return out, nil
}
