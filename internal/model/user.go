package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel 用户数据模型
type UserModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希
	RoleID       string    `gorm:"type:varchar(64);not null;index" json:"role_id"`
	DepartmentID string    `gorm:"type:varchar(64);not null;index" json:"department_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	Role       *RoleModel       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Department *DepartmentModel `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.Email == "" {
		return errors.New("email is required")
	}
	if um.PasswordHash == "" {
		return errors.New("password is required")
	}
	if um.RoleID == "" {
		return errors.New("role ID is required")
	}
	if um.DepartmentID == "" {
		return errors.New("department ID is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (um *UserModel) BeforeCreate(tx *gorm.DB) error {
	if um.ID == "" {
		um.ID = uuid.New().String()
	}
	return nil
}
