package issue

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/campus-fixit/internal/category"
	issueDatamodel "github.com/frahmantamala/campus-fixit/internal/core/datamodel/issue"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func JoinedStatusNames() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Transitions lists, for each status, the statuses it may move to. Every
// status may currently move to every other, including back out of Resolved.
var Transitions = map[Status][]Status{
	StatusOpen:       {StatusOpen, StatusInProgress, StatusResolved},
	StatusInProgress: {StatusOpen, StatusInProgress, StatusResolved},
	StatusResolved:   {StatusOpen, StatusInProgress, StatusResolved},
}

func CanTransition(from, to Status) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Remark struct {
	Text    string
	AddedBy string
	AddedAt time.Time
}

type Issue struct {
	ID          string
	Title       string
	Description string
	Category    category.Category
	Status      Status
	ImageURL    *string
	CreatedBy   string
	Remarks     []Remark
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

func NewIssue(dto CreateIssueDTO, creatorID string, now time.Time) *Issue {
	return &Issue{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    category.Category(dto.Category),
		Status:      StatusOpen,
		ImageURL:    dto.ImageURL,
		CreatedBy:   creatorID,
		Remarks:     []Remark{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (i *Issue) IsResolved() bool {
	return i.Status == StatusResolved
}

// ApplyStatus moves the issue to status. ResolvedAt is stamped on the first
// move into Resolved and is never cleared afterwards.
func (i *Issue) ApplyStatus(to Status, now time.Time) error {
	if !CanTransition(i.Status, to) {
		return fmt.Errorf("transition %q -> %q not allowed", i.Status, to)
	}
	i.Status = to
	if to == StatusResolved && i.ResolvedAt == nil {
		stamp := now
		i.ResolvedAt = &stamp
	}
	i.UpdatedAt = now
	return nil
}

func (i *Issue) AddRemark(text, authorID string, now time.Time) Remark {
	r := Remark{Text: text, AddedBy: authorID, AddedAt: now}
	i.Remarks = append(i.Remarks, r)
	i.UpdatedAt = now
	return r
}

func ToDataModel(i *Issue) *issueDatamodel.Issue {
	return &issueDatamodel.Issue{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    string(i.Category),
		Status:      string(i.Status),
		ImageURL:    i.ImageURL,
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		ResolvedAt:  i.ResolvedAt,
	}
}

func FromDataModel(row *issueDatamodel.Issue) *Issue {
	remarks := make([]Remark, len(row.Remarks))
	for k, r := range row.Remarks {
		remarks[k] = Remark{Text: r.Text, AddedBy: r.AddedBy, AddedAt: r.AddedAt}
	}
	return &Issue{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    category.Category(row.Category),
		Status:      Status(row.Status),
		ImageURL:    row.ImageURL,
		CreatedBy:   row.CreatedBy,
		Remarks:     remarks,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ResolvedAt:  row.ResolvedAt,
	}
}

func FromDataModelSlice(rows []issueDatamodel.Issue) []*Issue {
	result := make([]*Issue, len(rows))
	for k := range rows {
		result[k] = FromDataModel(&rows[k])
	}
	return result
}
