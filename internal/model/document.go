package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 受控文档类型
const (
	DocTypeManual          = "manual"
	DocTypePolicy          = "policy"
	DocTypeProcedure       = "procedure"
	DocTypeWorkInstruction = "work_instruction"
)

// docTypeCodes 文档类型对应的编号代码
var docTypeCodes = map[string]string{
	DocTypeManual:          "MAN",
	DocTypePolicy:          "POL",
	DocTypeProcedure:       "PRO",
	DocTypeWorkInstruction: "WI",
}

// DocumentModel 受控文档容器数据模型
// Manual/Policy/Procedure/WorkInstruction 共用同一张表,按 Type 区分;
// 实际内容保存在 DocumentVersionModel 中
type DocumentModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Type           string    `gorm:"type:varchar(32);not null;index" json:"type"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	DepartmentID   string    `gorm:"type:varchar(64);not null;index" json:"department_id"`
	DocumentNumber string    `gorm:"type:varchar(64);uniqueIndex" json:"document_number"` // {prefix}-{MAN|POL|PRO|WI}{NNN}
	CreatedBy      string    `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DocumentModel) TableName() string {
	return "documents"
}

// Validate 验证文档模型
func (dm *DocumentModel) Validate() error {
	if dm.Name == "" {
		return errors.New("document name is required")
	}
	if dm.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	if _, ok := docTypeCodes[dm.Type]; !ok {
		return errors.New("document type must be manual, policy, procedure or work_instruction")
	}
	return nil
}

// BeforeCreate 生成 ID 和文档编号
// 编号作用域为部门 + 文档类型
func (dm *DocumentModel) BeforeCreate(tx *gorm.DB) error {
	if dm.ID == "" {
		dm.ID = uuid.New().String()
	}
	if dm.DocumentNumber != "" {
		return nil
	}
	code, ok := docTypeCodes[dm.Type]
	if !ok {
		return fmt.Errorf("unknown document type %q", dm.Type)
	}
	var dept DepartmentModel
	if err := tx.First(&dept, "id = ?", dm.DepartmentID).Error; err != nil {
		return fmt.Errorf("department %s not found: %w", dm.DepartmentID, err)
	}
	var count int64
	err := tx.Table(dm.TableName()).
		Where("department_id = ? AND type = ?", dm.DepartmentID, dm.Type).
		Count(&count).Error
	if err != nil {
		return err
	}
	dm.DocumentNumber = formatRef(dept.Prefix, code, count+1)
	return nil
}
