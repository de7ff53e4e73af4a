package issue

import "time"

type Issue struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description;not null"`
	Category    string     `gorm:"column:category;not null;index"`
	Status      string     `gorm:"column:status;not null;index"`
	ImageURL    *string    `gorm:"column:image_url"`
	CreatedBy   string     `gorm:"column:created_by;type:varchar(36);not null;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	Remarks     []Remark   `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`
}

func (Issue) TableName() string {
	return "issues"
}

// Remark rows are append-only; ID gives insertion order.
type Remark struct {
	ID      int64     `gorm:"primaryKey;autoIncrement"`
	IssueID string    `gorm:"column:issue_id;type:varchar(36);not null;index"`
	Text    string    `gorm:"column:text;not null"`
	AddedBy string    `gorm:"column:added_by;type:varchar(36);not null"`
	AddedAt time.Time `gorm:"column:added_at;not null"`
}

func (Remark) TableName() string {
	return "issue_remarks"
}
