package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 文档版本状态
const (
	VersionDraft         = "draft"
	VersionUnderReview   = "under_review"
	VersionUnderApproval = "under_approval"
	VersionApproved      = "approved"
	VersionArchived      = "archived"
)

// 版本递增类型
const (
	VersionBumpMinor = "minor"
	VersionBumpMajor = "major"
)

// DocumentVersionModel 文档版本数据模型
// 同一文档任意时刻至多一个 approved 版本
type DocumentVersionModel struct {
	ID            string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DocumentID    string `gorm:"type:varchar(64);not null;index" json:"document_id"`
	VersionNumber string `gorm:"type:varchar(16);not null" json:"version_number"` // major.minor
	VersionType   string `gorm:"type:varchar(8)" json:"version_type"`             // major | minor
	Status        string `gorm:"type:varchar(32);not null;index" json:"status"`

	Purpose string `gorm:"type:text" json:"purpose"`
	Scope   string `gorm:"type:text" json:"scope"`
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedBy   string     `gorm:"type:varchar(64);not null" json:"created_by"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedBy  string     `gorm:"type:varchar(64)" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Reviews []DocumentReviewModel `gorm:"foreignKey:VersionID" json:"reviews,omitempty"`
}

// TableName 指定表名
func (DocumentVersionModel) TableName() string {
	return "document_versions"
}

// Validate 验证文档版本模型
func (vm *DocumentVersionModel) Validate() error {
	if vm.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if vm.Content == "" {
		return errors.New("content is required")
	}
	if vm.VersionType != "" && vm.VersionType != VersionBumpMinor && vm.VersionType != VersionBumpMajor {
		return errors.New("version type must be major or minor")
	}
	return nil
}

// BeforeCreate 生成 ID 和初始状态
// 版本号由服务层依据同文档最新版本计算后写入
func (vm *DocumentVersionModel) BeforeCreate(tx *gorm.DB) error {
	if vm.ID == "" {
		vm.ID = uuid.New().String()
	}
	if vm.Status == "" {
		vm.Status = VersionDraft
	}
	return nil
}

// ParseVersionNumber 解析 major.minor 版本号
func ParseVersionNumber(s string) (major int, minor int, err error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid version number %q", s)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version number %q", s)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version number %q", s)
	}
	return major, minor, nil
}

// NextVersionNumber 依据上一版本号和递增类型计算下一版本号
// minor: minor+1;major: major+1 且 minor 归零
func NextVersionNumber(previous string, bump string) (string, error) {
	major, minor, err := ParseVersionNumber(previous)
	if err != nil {
		return "", err
	}
	if bump == VersionBumpMajor {
		return fmt.Sprintf("%d.0", major+1), nil
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}
