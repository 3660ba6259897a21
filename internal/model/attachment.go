package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentModel 附件数据模型
// 附件与父记录在同一事务中写入,上传失败时整体回滚
type AttachmentModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ParentType string    `gorm:"type:varchar(32);not null;index:idx_attachment_parent" json:"parent_type"`
	ParentID   string    `gorm:"type:varchar(64);not null;index:idx_attachment_parent" json:"parent_id"`
	Field      string    `gorm:"type:varchar(64)" json:"field"` // 来源表单字段,如 detailedDescriptionAttachments
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	URL        string    `gorm:"type:text;not null" json:"url"` // 对象存储返回的公开 URL
	UploadedBy string    `gorm:"type:varchar(64);not null" json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (AttachmentModel) TableName() string {
	return "attachments"
}

// Validate 验证附件模型
func (am *AttachmentModel) Validate() error {
	if am.ParentType == "" || am.ParentID == "" {
		return errors.New("parent reference is required")
	}
	if am.FileName == "" {
		return errors.New("file name is required")
	}
	if am.URL == "" {
		return errors.New("url is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (am *AttachmentModel) BeforeCreate(tx *gorm.DB) error {
	if am.ID == "" {
		am.ID = uuid.New().String()
	}
	return nil
}
