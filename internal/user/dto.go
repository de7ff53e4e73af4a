package user

import (
	"time"

	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

// ProfileV1 is the body of GET /auth/profile. The password hash never leaves.
type ProfileV1 struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      coreuser.Role `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ContactV1 is the display form of a user embedded in other resources.
type ContactV1 struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) ToProfileV1() ProfileV1 {
	return ProfileV1{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) ToContactV1() ContactV1 {
	return ContactV1{ID: u.ID, Name: u.Name, Email: u.Email}
}
