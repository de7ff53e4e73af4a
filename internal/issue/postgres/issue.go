package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/campus-fixit/internal"
	issueDatamodel "github.com/frahmantamala/campus-fixit/internal/core/datamodel/issue"
	"github.com/frahmantamala/campus-fixit/internal/issue"
)

// IssueRepository implements issue.Repository using GORM
type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func withRemarks(db *gorm.DB) *gorm.DB {
	return db.Preload("Remarks", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
}

// Create assigns the issue id and saves it without remarks.
func (r *IssueRepository) Create(ctx context.Context, i *issue.Issue) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	row := issue.ToDataModel(i)
	return r.db.WithContext(ctx).Omit("Remarks").Create(row).Error
}

func (r *IssueRepository) GetByID(ctx context.Context, id string) (*issue.Issue, error) {
	var row issueDatamodel.Issue
	err := withRemarks(r.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrIssueNotFound
		}
		return nil, err
	}
	return issue.FromDataModel(&row), nil
}

func (r *IssueRepository) List(ctx context.Context, creatorID string, filter issue.ListFilter) ([]*issue.Issue, error) {
	q := withRemarks(r.db.WithContext(ctx)).Model(&issueDatamodel.Issue{})
	if creatorID != "" {
		q = q.Where("created_by = ?", creatorID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var rows []issueDatamodel.Issue
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return issue.FromDataModelSlice(rows), nil
}

// UpdateStatus writes status and updated_at. resolved_at is only filled
// when still empty, and i.ResolvedAt is refreshed with the stored stamp.
func (r *IssueRepository) UpdateStatus(ctx context.Context, i *issue.Issue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&issueDatamodel.Issue{}).
			Where("id = ?", i.ID).
			Updates(map[string]interface{}{
				"status":      string(i.Status),
				"resolved_at": gorm.Expr("COALESCE(resolved_at, ?)", i.ResolvedAt),
				"updated_at":  i.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrIssueNotFound
		}

		var row issueDatamodel.Issue
		if err := tx.Select("resolved_at").Where("id = ?", i.ID).Take(&row).Error; err != nil {
			return err
		}
		i.ResolvedAt = row.ResolvedAt
		return nil
	})
}

func (r *IssueRepository) AppendRemark(ctx context.Context, issueID string, remark issue.Remark, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&issueDatamodel.Issue{}).
			Where("id = ?", issueID).
			Update("updated_at", updatedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrIssueNotFound
		}
		return tx.Create(&issueDatamodel.Remark{
			IssueID: issueID,
			Text:    remark.Text,
			AddedBy: remark.AddedBy,
			AddedAt: remark.AddedAt,
		}).Error
	})
}
