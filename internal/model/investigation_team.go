package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 工作流父记录类型
const (
	ParentTypeDeviation     = "deviation"
	ParentTypeCAPA          = "capa"
	ParentTypeChangeControl = "change_control"
)

// InvestigationTeamModel 调查组数据模型
// 每条 Deviation/CAPA/ChangeControl 记录至多一个调查组,
// 仅在父记录 Accepted By QA 后创建
type InvestigationTeamModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ParentType string    `gorm:"type:varchar(32);not null;index:idx_team_parent" json:"parent_type"`
	ParentID   string    `gorm:"type:varchar(64);not null;index:idx_team_parent" json:"parent_id"`
	CreatedBy  string    `gorm:"type:varchar(64);not null" json:"created_by"`
	Remarks    string    `gorm:"type:text" json:"remarks"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`

	Members []TeamMemberModel `gorm:"foreignKey:TeamID" json:"members"`
}

// TableName 指定表名
func (InvestigationTeamModel) TableName() string {
	return "investigation_teams"
}

// Validate 验证调查组模型
func (tm *InvestigationTeamModel) Validate() error {
	if tm.ParentType == "" || tm.ParentID == "" {
		return errors.New("parent reference is required")
	}
	if len(tm.Members) == 0 {
		return errors.New("at least one team member is required")
	}
	return nil
}

// BeforeCreate 生成 ID
func (tm *InvestigationTeamModel) BeforeCreate(tx *gorm.DB) error {
	if tm.ID == "" {
		tm.ID = uuid.New().String()
	}
	return nil
}

// HasMember 判断用户是否为调查组成员
func (tm *InvestigationTeamModel) HasMember(userID string) bool {
	for _, m := range tm.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// TeamMemberModel 调查组成员数据模型
type TeamMemberModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TeamID    string    `gorm:"type:varchar(64);not null;index:idx_team_member,unique" json:"team_id"`
	UserID    string    `gorm:"type:varchar(64);not null;index:idx_team_member,unique" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (TeamMemberModel) TableName() string {
	return "team_members"
}

// BeforeCreate 生成 ID
func (mm *TeamMemberModel) BeforeCreate(tx *gorm.DB) error {
	if mm.ID == "" {
		mm.ID = uuid.New().String()
	}
	return nil
}
