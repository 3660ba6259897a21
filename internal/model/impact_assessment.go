package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImpactAssessmentModel 影响评估记录数据模型
// 三类父记录共用同一模型,按 ParentType 区分
type ImpactAssessmentModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ParentType string    `gorm:"type:varchar(32);not null;index:idx_impact_parent" json:"parent_type"`
	ParentID   string    `gorm:"type:varchar(64);not null;index:idx_impact_parent" json:"parent_id"`
	RecordedBy string    `gorm:"type:varchar(64);not null" json:"recorded_by"` // 必须是调查组成员
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`

	Answers []ImpactAnswerModel `gorm:"foreignKey:AssessmentID" json:"answers"`
}

// TableName 指定表名
func (ImpactAssessmentModel) TableName() string {
	return "impact_assessments"
}

// Validate 验证影响评估模型
func (am *ImpactAssessmentModel) Validate() error {
	if am.ParentType == "" || am.ParentID == "" {
		return errors.New("parent reference is required")
	}
	if am.RecordedBy == "" {
		return errors.New("recorded by is required")
	}
	if len(am.Answers) == 0 {
		return errors.New("at least one answer is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (am *ImpactAssessmentModel) BeforeCreate(tx *gorm.DB) error {
	if am.ID == "" {
		am.ID = uuid.New().String()
	}
	return nil
}

// ImpactAnswerModel 影响评估答案数据模型
// 答案类型在写入前已按问题声明的 response_type 校验,
// 按类型存入 AnswerBool 或 AnswerRating 之一
type ImpactAnswerModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	AssessmentID string    `gorm:"type:varchar(64);not null;index" json:"assessment_id"`
	QuestionID   string    `gorm:"type:varchar(64);not null" json:"question_id"`
	AnswerBool   *bool     `json:"answer_bool,omitempty"`
	AnswerRating *int      `json:"answer_rating,omitempty"` // 1-5
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (ImpactAnswerModel) TableName() string {
	return "impact_answers"
}

// BeforeCreate 生成 ID
func (am *ImpactAnswerModel) BeforeCreate(tx *gorm.DB) error {
	if am.ID == "" {
		am.ID = uuid.New().String()
	}
	return nil
}
