package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviationCategoryModel 偏差分类数据模型
type DeviationCategoryModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (DeviationCategoryModel) TableName() string {
	return "deviation_categories"
}

// Validate 验证偏差分类模型
func (cm *DeviationCategoryModel) Validate() error {
	if cm.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (cm *DeviationCategoryModel) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	return nil
}

// ChangeCategoryModel 变更分类数据模型
type ChangeCategoryModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ChangeCategoryModel) TableName() string {
	return "change_categories"
}

// Validate 验证变更分类模型
func (cm *ChangeCategoryModel) Validate() error {
	if cm.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (cm *ChangeCategoryModel) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	return nil
}
