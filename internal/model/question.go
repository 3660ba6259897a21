package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 问题答案类型
const (
	ResponseTypeYesNo  = "yes_no" // 布尔答案
	ResponseTypeRating = "rating" // 1-5 整数评分
)

// QuestionModel 影响评估问题数据模型
type QuestionModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	ResponseType string    `gorm:"type:varchar(16);not null" json:"response_type"` // yes_no | rating
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (QuestionModel) TableName() string {
	return "questions"
}

// Validate 验证问题模型
func (qm *QuestionModel) Validate() error {
	if qm.Text == "" {
		return errors.New("question text is required")
	}
	if qm.ResponseType != ResponseTypeYesNo && qm.ResponseType != ResponseTypeRating {
		return errors.New("response type must be yes_no or rating")
	}
	return nil
}

// BeforeCreate 生成 ID
func (qm *QuestionModel) BeforeCreate(tx *gorm.DB) error {
	if qm.ID == "" {
		qm.ID = uuid.New().String()
	}
	return nil
}
