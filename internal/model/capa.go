package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// CAPAModel 纠正预防措施记录数据模型
// 每条 CAPA 关联一条偏差记录,编号在偏差编号后追加 -CAPA{NN}
type CAPAModel struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CAPANumber string `gorm:"type:varchar(80);uniqueIndex" json:"capa_number"` // {deviationNumber}-CAPA{NN}

	DeviationID  string `gorm:"type:varchar(64);not null;index" json:"deviation_id"`
	DepartmentID string `gorm:"type:varchar(64);not null;index" json:"department_id"`

	RootCause        string     `gorm:"type:text" json:"root_cause"`
	CorrectiveAction string     `gorm:"type:text" json:"corrective_action"`
	PreventiveAction string     `gorm:"type:text" json:"preventive_action"`
	DueDate          *time.Time `gorm:"index" json:"due_date,omitempty"`

	ChangeControlID string `gorm:"type:varchar(64)" json:"change_control_id,omitempty"` // 发起变更控制后回填

	WorkflowFields `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (CAPAModel) TableName() string {
	return "capas"
}

// Validate 验证 CAPA 模型
func (cm *CAPAModel) Validate() error {
	if cm.DeviationID == "" {
		return errors.New("deviation ID is required")
	}
	if cm.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	return nil
}

// BeforeCreate 生成 ID、初始状态和 CAPA 编号
// 编号作用域为父偏差记录,补零到 2 位;父偏差缺失时整个创建失败
func (cm *CAPAModel) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	if cm.Status == "" {
		cm.Status = string(workflow.StatusDraft)
	}
	if cm.CAPANumber != "" {
		return nil
	}
	var deviation DeviationModel
	if err := tx.First(&deviation, "id = ?", cm.DeviationID).Error; err != nil {
		return fmt.Errorf("deviation %s not found: %w", cm.DeviationID, err)
	}
	seq, err := nextSequence(tx, cm.TableName(), "deviation_id", cm.DeviationID)
	if err != nil {
		return err
	}
	cm.CAPANumber = fmt.Sprintf("%s-CAPA%02d", deviation.DeviationNumber, seq)
	return nil
}
