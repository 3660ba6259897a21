package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepartmentModel 部门数据模型
type DepartmentModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Prefix      string    `gorm:"type:varchar(8);not null;uniqueIndex" json:"prefix"` // 引用编号前缀
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DepartmentModel) TableName() string {
	return "departments"
}

// Validate 验证部门模型
func (dm *DepartmentModel) Validate() error {
	if dm.Name == "" {
		return errors.New("department name is required")
	}
	return nil
}

// BeforeCreate 生成 ID 和引用编号前缀
// 前缀一经生成不可变;重复调用时跳过(幂等)
func (dm *DepartmentModel) BeforeCreate(tx *gorm.DB) error {
	if dm.ID == "" {
		dm.ID = uuid.New().String()
	}
	if dm.Prefix != "" {
		return nil
	}
	prefix, err := departmentPrefix(tx, dm.Name)
	if err != nil {
		return err
	}
	dm.Prefix = prefix
	return nil
}
