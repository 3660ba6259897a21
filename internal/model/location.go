package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationModel 地点数据模型
type LocationModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	DepartmentID string    `gorm:"type:varchar(64);index" json:"department_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (LocationModel) TableName() string {
	return "locations"
}

// Validate 验证地点模型
func (lm *LocationModel) Validate() error {
	if lm.Name == "" {
		return errors.New("location name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (lm *LocationModel) BeforeCreate(tx *gorm.DB) error {
	if lm.ID == "" {
		lm.ID = uuid.New().String()
	}
	return nil
}
