package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// UserRepository 用户仓储接口
// FindByID/FindByEmail 预加载角色和部门,授权中间件依赖完整用户
type UserRepository interface {
	Save(user *model.UserModel) error
	FindByID(id string) (*model.UserModel, error)
	FindByEmail(email string) (*model.UserModel, error)
	FindAll() ([]*model.UserModel, error)
	Delete(id string) error
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Save 保存用户
func (r *userRepository) Save(user *model.UserModel) error {
	return r.db.Save(user).Error
}

// FindByID 根据 ID 查找用户(含角色和部门)
func (r *userRepository) FindByID(id string) (*model.UserModel, error) {
	var user model.UserModel
	err := r.db.Preload("Role").Preload("Department").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户(含角色和部门)
func (r *userRepository) FindByEmail(email string) (*model.UserModel, error) {
	var user model.UserModel
	err := r.db.Preload("Role").Preload("Department").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 查找所有用户
func (r *userRepository) FindAll() ([]*model.UserModel, error) {
	var users []*model.UserModel
	err := r.db.Preload("Role").Preload("Department").Order("created_at DESC").Find(&users).Error
	return users, err
}

// Delete 删除用户
func (r *userRepository) Delete(id string) error {
	return r.db.Delete(&model.UserModel{}, "id = ?", id).Error
}
