package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentModel 设备数据模型
type EquipmentModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Code         string    `gorm:"type:varchar(64)" json:"code"` // 设备编号
	DepartmentID string    `gorm:"type:varchar(64);index" json:"department_id"`
	LocationID   string    `gorm:"type:varchar(64);index" json:"location_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (EquipmentModel) TableName() string {
	return "equipment"
}

// Validate 验证设备模型
func (em *EquipmentModel) Validate() error {
	if em.Name == "" {
		return errors.New("equipment name is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (em *EquipmentModel) BeforeCreate(tx *gorm.DB) error {
	if em.ID == "" {
		em.ID = uuid.New().String()
	}
	return nil
}
