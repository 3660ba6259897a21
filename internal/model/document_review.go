package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentReviewModel 文档版本评审记录数据模型
type DocumentReviewModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	VersionID  string    `gorm:"type:varchar(64);not null;index" json:"version_id"`
	ReviewerID string    `gorm:"type:varchar(64);not null" json:"reviewer_id"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (DocumentReviewModel) TableName() string {
	return "document_reviews"
}

// Validate 验证评审记录模型
func (rm *DocumentReviewModel) Validate() error {
	if rm.VersionID == "" {
		return errors.New("version ID is required")
	}
	if rm.ReviewerID == "" {
		return errors.New("reviewer ID is required")
	}
	if rm.Comment == "" {
		return errors.New("comment is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (rm *DocumentReviewModel) BeforeCreate(tx *gorm.DB) error {
	if rm.ID == "" {
		rm.ID = uuid.New().String()
	}
	return nil
}
