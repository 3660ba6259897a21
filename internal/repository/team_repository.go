package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// TeamRepository 调查组仓储接口
// 删除不做状态校验,成员列表在删除前可变
type TeamRepository interface {
	Save(tx *gorm.DB, team *model.InvestigationTeamModel) error
	FindByID(id string) (*model.InvestigationTeamModel, error)
	FindByParent(parentType string, parentID string) (*model.InvestigationTeamModel, error)
	AddMember(teamID string, userID string) error
	RemoveMember(teamID string, userID string) error
	Delete(id string) error
}

// teamRepository 调查组仓储实现
type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository 创建调查组仓储
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// Save 保存调查组(含成员,成员通过关联一并写入)
func (r *teamRepository) Save(tx *gorm.DB, team *model.InvestigationTeamModel) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(team).Error
}

// FindByID 根据 ID 查找调查组(含成员)
func (r *teamRepository) FindByID(id string) (*model.InvestigationTeamModel, error) {
	var team model.InvestigationTeamModel
	if err := r.db.Preload("Members").Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByParent 根据父记录查找调查组(含成员)
func (r *teamRepository) FindByParent(parentType string, parentID string) (*model.InvestigationTeamModel, error) {
	var team model.InvestigationTeamModel
	err := r.db.Preload("Members").
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// AddMember 追加调查组成员
func (r *teamRepository) AddMember(teamID string, userID string) error {
	return r.db.Create(&model.TeamMemberModel{TeamID: teamID, UserID: userID}).Error
}

// RemoveMember 移除调查组成员
func (r *teamRepository) RemoveMember(teamID string, userID string) error {
	return r.db.Delete(&model.TeamMemberModel{}, "team_id = ? AND user_id = ?", teamID, userID).Error
}

// Delete 删除调查组及其成员
func (r *teamRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.TeamMemberModel{}, "team_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.InvestigationTeamModel{}, "id = ?", id).Error
	})
}
