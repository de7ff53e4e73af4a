package issue

import (
	"strings"
	"time"

	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/category"
	"github.com/frahmantamala/campus-fixit/internal/core/common/validation"
	"github.com/frahmantamala/campus-fixit/internal/user"
)

type CreateIssueDTO struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	// ImageURL is set only from a stored upload, never from the request body.
	ImageURL *string `json:"-"`
}

func (d *CreateIssueDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if d.ImageURL != nil {
		trimmed := strings.TrimSpace(*d.ImageURL)
		if trimmed == "" {
			d.ImageURL = nil
		} else {
			d.ImageURL = &trimmed
		}
	}
}

func (d CreateIssueDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required("Title is required")
	v.Field("description", d.Description).Required("Description is required")
	v.Field("category", d.Category).
		Required("Category is required").
		OneOf(category.Names(),
			"Invalid category. Must be one of: "+category.JoinedNames(),
			internal.ErrCodeInvalidCategory)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ListFilter narrows issue lists. Empty fields do not filter.
type ListFilter struct {
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (f ListFilter) Validate() error {
	if f.Category != "" && !category.Category(f.Category).IsValid() {
		return internal.NewValidationFieldError("category",
			"Invalid category filter. Must be one of: "+category.JoinedNames(),
			internal.ErrCodeInvalidCategory)
	}
	if f.Status != "" && !Status(f.Status).IsValid() {
		return internal.NewValidationFieldError("status",
			"Invalid status filter. Must be one of: "+JoinedStatusNames(),
			internal.ErrCodeInvalidStatus)
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() error {
	if d.Status == "" {
		return internal.NewValidationFieldError("status", "Status is required", internal.ErrCodeValidationFailed)
	}
	if !Status(d.Status).IsValid() {
		return internal.NewValidationFieldError("status",
			"Invalid status. Must be one of: "+JoinedStatusNames(),
			internal.ErrCodeInvalidStatus)
	}
	return nil
}

type AddRemarkDTO struct {
	Text string `json:"text"`
}

func (d AddRemarkDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("text", d.Text).Required("Remark text is required")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RemarkV1 struct {
	Text    string    `json:"text"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// IssueV1 is the API shape of an issue with its creator expanded.
type IssueV1 struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Status      string         `json:"status"`
	ImageURL    *string        `json:"imageUrl,omitempty"`
	CreatedBy   user.ContactV1 `json:"createdBy"`
	Remarks     []RemarkV1     `json:"remarks"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
}

func (i *Issue) ToV1(creator user.ContactV1) IssueV1 {
	remarks := make([]RemarkV1, len(i.Remarks))
	for k, r := range i.Remarks {
		remarks[k] = RemarkV1{Text: r.Text, AddedBy: r.AddedBy, AddedAt: r.AddedAt}
	}
	if creator.ID == "" {
		creator.ID = i.CreatedBy
	}
	return IssueV1{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    string(i.Category),
		Status:      string(i.Status),
		ImageURL:    i.ImageURL,
		CreatedBy:   creator,
		Remarks:     remarks,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		ResolvedAt:  i.ResolvedAt,
	}
}

// StatsV1 is the admin summary returned by GET /issues/stats.
type StatsV1 struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
}
