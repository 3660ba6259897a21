package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleModel 角色数据模型
// 内置角色: Creator/Reviewer/Approver/Admin
type RoleModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (RoleModel) TableName() string {
	return "roles"
}

// Validate 验证角色模型
func (rm *RoleModel) Validate() error {
	if rm.Name == "" {
		return errors.New("role name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (rm *RoleModel) BeforeCreate(tx *gorm.DB) error {
	if rm.ID == "" {
		rm.ID = uuid.New().String()
	}
	return nil
}
