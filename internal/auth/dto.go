package auth

import (
	"strings"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/core/common/validation"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

const MinPasswordLength = 6

type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the name and folds the email so lookups are case-insensitive.
func (d *RegisterDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required("Name is required")
	v.Field("email", d.Email).
		Required("Email is required").
		Email("Please provide a valid email address")
	v.Field("password", d.Password).
		Required("Password is required").
		MinLength(MinPasswordLength, "Password must be at least 6 characters", internal.ErrCodePasswordTooShort)
	if d.Role != "" {
		v.Field("role", d.Role).OneOf(
			[]string{string(coreuser.RoleStudent), string(coreuser.RoleAdmin)},
			"Invalid role. Must be one of: student, admin",
			internal.ErrCodeInvalidRole,
		)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *LoginDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required("Email is required")
	v.Field("password", d.Password).Required("Password is required")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
