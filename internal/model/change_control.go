package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// 变更分类维度
const (
	ChangeMajor          = "major"
	ChangeMinor          = "minor"
	ChangeAdministrative = "administrative"

	ChangePermanent = "permanent"
	ChangeTemporary = "temporary"
)

// ChangeControlModel 变更控制记录数据模型
type ChangeControlModel struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ChangeNumber string `gorm:"type:varchar(64);uniqueIndex" json:"change_number"` // {prefix}-CC{NNN}

	ChangeType   string `gorm:"type:varchar(16)" json:"change_type"` // major | minor | administrative
	Duration     string `gorm:"type:varchar(16)" json:"duration"`    // permanent | temporary
	CategoryID   string `gorm:"type:varchar(64);index" json:"category_id"`
	DepartmentID string `gorm:"type:varchar(64);not null;index" json:"department_id"`
	LocationID   string `gorm:"type:varchar(64);index" json:"location_id"`

	CAPAID       string       `gorm:"type:varchar(64);index" json:"capa_id,omitempty"` // 由 CAPA 触发时回链
	AffectedItem AffectedItem `gorm:"embedded" json:"affected_item"`
	DocumentID   string       `gorm:"type:varchar(64)" json:"document_id,omitempty"`

	Description    string `gorm:"type:text;not null" json:"description"`
	Justification  string `gorm:"type:text" json:"justification"`
	SimilarChanges string `gorm:"type:text" json:"similar_changes"` // 相似变更交叉引用
	RiskScore      int    `json:"risk_score"`

	TargetDate *time.Time `json:"target_date,omitempty"` // 计划实施日期

	HistoricalCheckRemarks string     `gorm:"type:text" json:"historical_check_remarks,omitempty"`
	AcknowledgedBy         string     `gorm:"type:varchar(64)" json:"acknowledged_by,omitempty"`
	AcknowledgedAt         *time.Time `json:"acknowledged_at,omitempty"`
	ClosedBy               string     `gorm:"type:varchar(64)" json:"closed_by,omitempty"`
	ClosedAt               *time.Time `json:"closed_at,omitempty"`

	WorkflowFields `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ChangeControlModel) TableName() string {
	return "change_controls"
}

// Validate 验证变更控制模型
func (cm *ChangeControlModel) Validate() error {
	if cm.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	if cm.Description == "" {
		return errors.New("description is required")
	}
	switch cm.ChangeType {
	case "", ChangeMajor, ChangeMinor, ChangeAdministrative:
	default:
		return errors.New("change type must be major, minor or administrative")
	}
	switch cm.Duration {
	case "", ChangePermanent, ChangeTemporary:
	default:
		return errors.New("duration must be permanent or temporary")
	}
	if !cm.AffectedItem.Valid() {
		return errors.New("affected item variant is invalid")
	}
	return nil
}

// BeforeCreate 生成 ID、初始状态和变更编号
func (cm *ChangeControlModel) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	if cm.Status == "" {
		cm.Status = string(workflow.StatusDraft)
	}
	if cm.ChangeNumber != "" {
		return nil
	}
	var dept DepartmentModel
	if err := tx.First(&dept, "id = ?", cm.DepartmentID).Error; err != nil {
		return fmt.Errorf("department %s not found: %w", cm.DepartmentID, err)
	}
	seq, err := nextSequence(tx, cm.TableName(), "department_id", cm.DepartmentID)
	if err != nil {
		return err
	}
	cm.ChangeNumber = formatRef(dept.Prefix, "CC", seq)
	return nil
}
