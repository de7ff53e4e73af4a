package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/campus-fixit/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

// User represents the internal user model
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         coreuser.Role
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         coreuser.Role(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}
