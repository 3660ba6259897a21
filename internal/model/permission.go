package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionModel 权限数据模型
type PermissionModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (PermissionModel) TableName() string {
	return "permissions"
}

// Validate 验证权限模型
func (pm *PermissionModel) Validate() error {
	if pm.Name == "" {
		return errors.New("permission name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (pm *PermissionModel) BeforeCreate(tx *gorm.DB) error {
	if pm.ID == "" {
		pm.ID = uuid.New().String()
	}
	return nil
}

// RolePermissionModel 角色-权限关联数据模型
type RolePermissionModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RoleID       string    `gorm:"type:varchar(64);not null;index:idx_role_permission,unique" json:"role_id"`
	PermissionID string    `gorm:"type:varchar(64);not null;index:idx_role_permission,unique" json:"permission_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`

	Role       *RoleModel       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Permission *PermissionModel `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}

// TableName 指定表名
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// Validate 验证角色-权限关联模型
func (rpm *RolePermissionModel) Validate() error {
	if rpm.RoleID == "" {
		return errors.New("role ID is required")
	}
	if rpm.PermissionID == "" {
		return errors.New("permission ID is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (rpm *RolePermissionModel) BeforeCreate(tx *gorm.DB) error {
	if rpm.ID == "" {
		rpm.ID = uuid.New().String()
	}
	return nil
}
