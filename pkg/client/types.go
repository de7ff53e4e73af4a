package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Remark struct {
	Text    string    `json:"text"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

type Issue struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	CreatedBy   Contact    `json:"createdBy"`
	Remarks     []Remark   `json:"remarks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// Filters narrow issue lists. Empty fields are not sent.
type Filters struct {
	Category string
	Status   string
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// NewIssue is sent as multipart/form-data. Image is optional.
type NewIssue struct {
	Title       string
	Description string
	Category    string
	Image       *Image
}

type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}
