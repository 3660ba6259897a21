package service

import (
	"context"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
)

// DirectoryService 基础主数据服务接口
// 覆盖部门/角色/用户/权限和评估问题、场所、设备、分类目录
type DirectoryService interface {
	CreateDepartment(ctx context.Context, dept *model.DepartmentModel) (*model.DepartmentModel, error)
	ListDepartments(ctx context.Context) ([]*model.DepartmentModel, error)
	GetDepartment(ctx context.Context, id string) (*model.DepartmentModel, error)

	CreateRole(ctx context.Context, role *model.RoleModel) (*model.RoleModel, error)
	ListRoles(ctx context.Context) ([]*model.RoleModel, error)

	ListUsers(ctx context.Context) ([]*model.UserModel, error)
	GetUser(ctx context.Context, id string) (*model.UserModel, error)

	CreatePermission(ctx context.Context, p *model.PermissionModel) (*model.PermissionModel, error)
	ListPermissions(ctx context.Context) ([]*model.PermissionModel, error)
	GrantPermission(ctx context.Context, roleID string, permissionID string) error
	RevokePermission(ctx context.Context, roleID string, permissionID string) error
	ListRolePermissions(ctx context.Context, roleID string) ([]*model.RolePermissionModel, error)

	CreateQuestion(ctx context.Context, q *model.QuestionModel) (*model.QuestionModel, error)
	ListQuestions(ctx context.Context) ([]*model.QuestionModel, error)
	DeleteQuestion(ctx context.Context, id string) error

	CreateLocation(ctx context.Context, loc *model.LocationModel) (*model.LocationModel, error)
	ListLocations(ctx context.Context) ([]*model.LocationModel, error)
	DeleteLocation(ctx context.Context, id string) error

	CreateEquipment(ctx context.Context, eq *model.EquipmentModel) (*model.EquipmentModel, error)
	ListEquipment(ctx context.Context) ([]*model.EquipmentModel, error)
	DeleteEquipment(ctx context.Context, id string) error

	CreateDeviationCategory(ctx context.Context, c *model.DeviationCategoryModel) (*model.DeviationCategoryModel, error)
	ListDeviationCategories(ctx context.Context) ([]*model.DeviationCategoryModel, error)
	CreateChangeCategory(ctx context.Context, c *model.ChangeCategoryModel) (*model.ChangeCategoryModel, error)
	ListChangeCategories(ctx context.Context) ([]*model.ChangeCategoryModel, error)
}

// directoryService 基础主数据服务实现
type directoryService struct {
	departments repository.DepartmentRepository
	roles       repository.RoleRepository
	users       repository.UserRepository
	permissions repository.PermissionRepository
	catalog     repository.CatalogRepository
	audit       AuditLogService
}

// NewDirectoryService 创建基础主数据服务
func NewDirectoryService(
	departments repository.DepartmentRepository,
	roles repository.RoleRepository,
	users repository.UserRepository,
	permissions repository.PermissionRepository,
	catalog repository.CatalogRepository,
	audit AuditLogService,
) DirectoryService {
	return &directoryService{
		departments: departments,
		roles:       roles,
		users:       users,
		permissions: permissions,
		catalog:     catalog,
		audit:       audit,
	}
}

// CreateDepartment 创建部门,引用编号前缀在创建钩子中生成
func (s *directoryService) CreateDepartment(ctx context.Context, dept *model.DepartmentModel) (*model.DepartmentModel, error) {
	if err := dept.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.departments.Save(dept); err != nil {
		return nil, wrapError(err, "failed to create department")
	}
	return dept, nil
}

// ListDepartments 查询全部部门
func (s *directoryService) ListDepartments(ctx context.Context) ([]*model.DepartmentModel, error) {
	depts, err := s.departments.FindAll()
	if err != nil {
		return nil, wrapError(err, "failed to list departments")
	}
	return depts, nil
}

// GetDepartment 查询部门
func (s *directoryService) GetDepartment(ctx context.Context, id string) (*model.DepartmentModel, error) {
	dept, err := s.departments.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "department not found")
	}
	return dept, nil
}

// CreateRole 创建角色
func (s *directoryService) CreateRole(ctx context.Context, role *model.RoleModel) (*model.RoleModel, error) {
	if err := role.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.roles.Save(role); err != nil {
		return nil, wrapError(err, "failed to create role")
	}
	return role, nil
}

// ListRoles 查询全部角色
func (s *directoryService) ListRoles(ctx context.Context) ([]*model.RoleModel, error) {
	roles, err := s.roles.FindAll()
	if err != nil {
		return nil, wrapError(err, "failed to list roles")
	}
	return roles, nil
}

// ListUsers 查询全部用户
func (s *directoryService) ListUsers(ctx context.Context) ([]*model.UserModel, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, wrapError(err, "failed to list users")
	}
	return users, nil
}

// GetUser 查询用户
func (s *directoryService) GetUser(ctx context.Context, id string) (*model.UserModel, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "user not found")
	}
	return user, nil
}

// CreatePermission 创建权限
func (s *directoryService) CreatePermission(ctx context.Context, p *model.PermissionModel) (*model.PermissionModel, error) {
	if err := p.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.permissions.Save(p); err != nil {
		return nil, wrapError(err, "failed to create permission")
	}
	return p, nil
}

// ListPermissions 查询全部权限
func (s *directoryService) ListPermissions(ctx context.Context) ([]*model.PermissionModel, error) {
	ps, err := s.permissions.FindAll()
	if err != nil {
		return nil, wrapError(err, "failed to list permissions")
	}
	return ps, nil
}

// GrantPermission 给角色授予权限
func (s *directoryService) GrantPermission(ctx context.Context, roleID string, permissionID string) error {
	if _, err := s.roles.FindByID(roleID); err != nil {
		return wrapError(err, "role not found")
	}
	if _, err := s.permissions.FindByID(permissionID); err != nil {
		return wrapError(err, "permission not found")
	}
	rp := &model.RolePermissionModel{RoleID: roleID, PermissionID: permissionID}
	if err := s.permissions.SaveRolePermission(rp); err != nil {
		return wrapError(err, "failed to grant permission")
	}
	return nil
}

// RevokePermission 撤销角色权限
func (s *directoryService) RevokePermission(ctx context.Context, roleID string, permissionID string) error {
	if err := s.permissions.DeleteRolePermission(roleID, permissionID); err != nil {
		return wrapError(err, "failed to revoke permission")
	}
	return nil
}

// ListRolePermissions 查询角色的权限列表
func (s *directoryService) ListRolePermissions(ctx context.Context, roleID string) ([]*model.RolePermissionModel, error) {
	rps, err := s.permissions.FindByRoleID(roleID)
	if err != nil {
		return nil, wrapError(err, "failed to list role permissions")
	}
	return rps, nil
}

// CreateQuestion 创建影响评估问题
func (s *directoryService) CreateQuestion(ctx context.Context, q *model.QuestionModel) (*model.QuestionModel, error) {
	if err := q.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.catalog.SaveQuestion(q); err != nil {
		return nil, wrapError(err, "failed to create question")
	}
	return q, nil
}

// ListQuestions 查询全部评估问题
func (s *directoryService) ListQuestions(ctx context.Context) ([]*model.QuestionModel, error) {
	qs, err := s.catalog.FindQuestions()
	if err != nil {
		return nil, wrapError(err, "failed to list questions")
	}
	return qs, nil
}

// DeleteQuestion 删除评估问题
func (s *directoryService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.catalog.DeleteQuestion(id); err != nil {
		return wrapError(err, "failed to delete question")
	}
	return nil
}

// CreateLocation 创建场所
func (s *directoryService) CreateLocation(ctx context.Context, loc *model.LocationModel) (*model.LocationModel, error) {
	if err := loc.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.catalog.SaveLocation(loc); err != nil {
		return nil, wrapError(err, "failed to create location")
	}
	return loc, nil
}

// ListLocations 查询全部场所
func (s *directoryService) ListLocations(ctx context.Context) ([]*model.LocationModel, error) {
	locs, err := s.catalog.FindLocations()
	if err != nil {
		return nil, wrapError(err, "failed to list locations")
	}
	return locs, nil
}

// DeleteLocation 删除场所
func (s *directoryService) DeleteLocation(ctx context.Context, id string) error {
	if err := s.catalog.DeleteLocation(id); err != nil {
		return wrapError(err, "failed to delete location")
	}
	return nil
}

// CreateEquipment 创建设备
func (s *directoryService) CreateEquipment(ctx context.Context, eq *model.EquipmentModel) (*model.EquipmentModel, error) {
	if err := eq.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.catalog.SaveEquipment(eq); err != nil {
		return nil, wrapError(err, "failed to create equipment")
	}
	return eq, nil
}

// ListEquipment 查询全部设备
func (s *directoryService) ListEquipment(ctx context.Context) ([]*model.EquipmentModel, error) {
	eqs, err := s.catalog.FindEquipment()
	if err != nil {
		return nil, wrapError(err, "failed to list equipment")
	}
	return eqs, nil
}

// DeleteEquipment 删除设备
func (s *directoryService) DeleteEquipment(ctx context.Context, id string) error {
	if err := s.catalog.DeleteEquipment(id); err != nil {
		return wrapError(err, "failed to delete equipment")
	}
	return nil
}

// CreateDeviationCategory 创建偏差分类
func (s *directoryService) CreateDeviationCategory(ctx context.Context, c *model.DeviationCategoryModel) (*model.DeviationCategoryModel, error) {
	if err := c.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.catalog.SaveDeviationCategory(c); err != nil {
		return nil, wrapError(err, "failed to create deviation category")
	}
	return c, nil
}

// ListDeviationCategories 查询全部偏差分类
func (s *directoryService) ListDeviationCategories(ctx context.Context) ([]*model.DeviationCategoryModel, error) {
	cs, err := s.catalog.FindDeviationCategories()
	if err != nil {
		return nil, wrapError(err, "failed to list deviation categories")
	}
	return cs, nil
}

// CreateChangeCategory 创建变更分类
func (s *directoryService) CreateChangeCategory(ctx context.Context, c *model.ChangeCategoryModel) (*model.ChangeCategoryModel, error) {
	if err := c.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if err := s.catalog.SaveChangeCategory(c); err != nil {
		return nil, wrapError(err, "failed to create change category")
	}
	return c, nil
}

// ListChangeCategories 查询全部变更分类
func (s *directoryService) ListChangeCategories(ctx context.Context) ([]*model.ChangeCategoryModel, error) {
	cs, err := s.catalog.FindChangeCategories()
	if err != nil {
		return nil, wrapError(err, "failed to list change categories")
	}
	return cs, nil
}
