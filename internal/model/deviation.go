package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// 偏差分类维度
const (
	DeviationPlanned   = "planned"
	DeviationUnplanned = "unplanned"
)

// DeviationModel 偏差记录数据模型
type DeviationModel struct {
	ID              string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DeviationNumber string `gorm:"type:varchar(64);uniqueIndex" json:"deviation_number"` // {prefix}-DEV{NNN}

	PlannedType  string `gorm:"type:varchar(16)" json:"planned_type"` // planned | unplanned
	GMPRelevant  bool   `json:"gmp_relevant"`
	CategoryID   string `gorm:"type:varchar(64);index" json:"category_id"`
	DepartmentID string `gorm:"type:varchar(64);not null;index" json:"department_id"`
	LocationID   string `gorm:"type:varchar(64);index" json:"location_id"`

	AffectedItem AffectedItem `gorm:"embedded" json:"affected_item"`

	DocumentID          string `gorm:"type:varchar(64)" json:"document_id,omitempty"` // 关联受控文档,可选
	Description         string `gorm:"type:text;not null" json:"description"`
	DetailedDescription string `gorm:"type:text" json:"detailed_description"`
	ImmediateActions    string `gorm:"type:text" json:"immediate_actions"`

	ImpactAssessmentID string `gorm:"type:varchar(64)" json:"impact_assessment_id,omitempty"`

	WorkflowFields `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DeviationModel) TableName() string {
	return "deviations"
}

// Validate 验证偏差模型
func (dm *DeviationModel) Validate() error {
	if dm.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	if dm.Description == "" {
		return errors.New("description is required")
	}
	if dm.PlannedType != "" && dm.PlannedType != DeviationPlanned && dm.PlannedType != DeviationUnplanned {
		return errors.New("planned type must be planned or unplanned")
	}
	if !dm.AffectedItem.Valid() {
		return errors.New("affected item variant is invalid")
	}
	return nil
}

// BeforeCreate 生成 ID、初始状态和偏差编号
// 编号已存在时跳过生成(幂等);部门缺失时整个创建失败
func (dm *DeviationModel) BeforeCreate(tx *gorm.DB) error {
	if dm.ID == "" {
		dm.ID = uuid.New().String()
	}
	if dm.Status == "" {
		dm.Status = string(workflow.StatusDraft)
	}
	if dm.DeviationNumber != "" {
		return nil
	}
	var dept DepartmentModel
	if err := tx.First(&dept, "id = ?", dm.DepartmentID).Error; err != nil {
		return fmt.Errorf("department %s not found: %w", dm.DepartmentID, err)
	}
	seq, err := nextSequence(tx, dm.TableName(), "department_id", dm.DepartmentID)
	if err != nil {
		return err
	}
	dm.DeviationNumber = formatRef(dept.Prefix, "DEV", seq)
	return nil
}
