package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// DirectoryController 组织目录与基础数据控制器
// 部门/角色/用户/权限以及问卷、地点、设备、分类等目录数据
type DirectoryController struct {
	directoryService service.DirectoryService
}

// NewDirectoryController 创建组织目录控制器
func NewDirectoryController(directoryService service.DirectoryService) *DirectoryController {
	return &DirectoryController{
		directoryService: directoryService,
	}
}

// CreateDepartment 创建部门
// @Summary      创建部门
// @Tags         组织目录
// @Accept       json
// @Produce      json
// @Param        request body model.DepartmentModel true "部门信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /departments [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateDepartment(ctx *gin.Context) {
	var req model.DepartmentModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	dept, err := c.directoryService.CreateDepartment(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, dept)
}

// ListDepartments 查询部门列表
// @Summary      查询部门列表
// @Tags         组织目录
// @Produce      json
// @Success      200  {object}  Response
// @Router       /departments [get]
// @Security     BearerAuth
func (c *DirectoryController) ListDepartments(ctx *gin.Context) {
	depts, err := c.directoryService.ListDepartments(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, depts)
}

// GetDepartment 获取部门
// @Summary      获取部门
// @Tags         组织目录
// @Produce      json
// @Param        id path string true "部门 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /departments/{id} [get]
// @Security     BearerAuth
func (c *DirectoryController) GetDepartment(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	dept, err := c.directoryService.GetDepartment(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, dept)
}

// CreateRole 创建角色
// @Summary      创建角色
// @Tags         组织目录
// @Accept       json
// @Produce      json
// @Param        request body model.RoleModel true "角色信息"
// @Success      200  {object}  Response
// @Router       /roles [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateRole(ctx *gin.Context) {
	var req model.RoleModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	role, err := c.directoryService.CreateRole(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, role)
}

// ListRoles 查询角色列表
// @Summary      查询角色列表
// @Tags         组织目录
// @Produce      json
// @Success      200  {object}  Response
// @Router       /roles [get]
// @Security     BearerAuth
func (c *DirectoryController) ListRoles(ctx *gin.Context) {
	roles, err := c.directoryService.ListRoles(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, roles)
}

// ListUsers 查询用户列表
// @Summary      查询用户列表
// @Tags         组织目录
// @Produce      json
// @Success      200  {object}  Response
// @Router       /users [get]
// @Security     BearerAuth
func (c *DirectoryController) ListUsers(ctx *gin.Context) {
	users, err := c.directoryService.ListUsers(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, users)
}

// GetUser 获取用户
// @Summary      获取用户
// @Tags         组织目录
// @Produce      json
// @Param        id path string true "用户 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (c *DirectoryController) GetUser(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	user, err := c.directoryService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// CreatePermission 创建权限
// @Summary      创建权限
// @Tags         组织目录
// @Accept       json
// @Produce      json
// @Param        request body model.PermissionModel true "权限信息"
// @Success      200  {object}  Response
// @Router       /permissions [post]
// @Security     BearerAuth
func (c *DirectoryController) CreatePermission(ctx *gin.Context) {
	var req model.PermissionModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	permission, err := c.directoryService.CreatePermission(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, permission)
}

// ListPermissions 查询权限列表
// @Summary      查询权限列表
// @Tags         组织目录
// @Produce      json
// @Success      200  {object}  Response
// @Router       /permissions [get]
// @Security     BearerAuth
func (c *DirectoryController) ListPermissions(ctx *gin.Context) {
	permissions, err := c.directoryService.ListPermissions(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, permissions)
}

// GrantPermission 为角色授予权限
// @Summary      为角色授予权限
// @Tags         组织目录
// @Produce      json
// @Param        id path string true "角色 ID"
// @Param        permissionId path string true "权限 ID"
// @Success      200  {object}  Response
// @Router       /roles/{id}/permissions/{permissionId} [post]
// @Security     BearerAuth
func (c *DirectoryController) GrantPermission(ctx *gin.Context) {
	roleID := ctx.Param("id")
	permissionID := ctx.Param("permissionId")
	if !validateRecordID(ctx, roleID) || !validateRecordID(ctx, permissionID) {
		return
	}

	if err := c.directoryService.GrantPermission(ctx.Request.Context(), roleID, permissionID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// RevokePermission 撤销角色权限
// @Summary      撤销角色权限
// @Tags         组织目录
// @Produce      json
// @Param        id path string true "角色 ID"
// @Param        permissionId path string true "权限 ID"
// @Success      200  {object}  Response
// @Router       /roles/{id}/permissions/{permissionId} [delete]
// @Security     BearerAuth
func (c *DirectoryController) RevokePermission(ctx *gin.Context) {
	roleID := ctx.Param("id")
	permissionID := ctx.Param("permissionId")
	if !validateRecordID(ctx, roleID) || !validateRecordID(ctx, permissionID) {
		return
	}

	if err := c.directoryService.RevokePermission(ctx.Request.Context(), roleID, permissionID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// ListRolePermissions 查询角色权限
// @Summary      查询角色权限
// @Tags         组织目录
// @Produce      json
// @Param        id path string true "角色 ID"
// @Success      200  {object}  Response
// @Router       /roles/{id}/permissions [get]
// @Security     BearerAuth
func (c *DirectoryController) ListRolePermissions(ctx *gin.Context) {
	roleID := ctx.Param("id")
	if !validateRecordID(ctx, roleID) {
		return
	}

	permissions, err := c.directoryService.ListRolePermissions(ctx.Request.Context(), roleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, permissions)
}

// CreateQuestion 创建评估问卷问题
// @Summary      创建评估问卷问题
// @Tags         基础数据
// @Accept       json
// @Produce      json
// @Param        request body model.QuestionModel true "问题信息"
// @Success      200  {object}  Response
// @Router       /questions [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateQuestion(ctx *gin.Context) {
	var req model.QuestionModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	question, err := c.directoryService.CreateQuestion(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, question)
}

// ListQuestions 查询问卷问题列表
// @Summary      查询问卷问题列表
// @Tags         基础数据
// @Produce      json
// @Success      200  {object}  Response
// @Router       /questions [get]
// @Security     BearerAuth
func (c *DirectoryController) ListQuestions(ctx *gin.Context) {
	questions, err := c.directoryService.ListQuestions(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, questions)
}

// DeleteQuestion 删除问卷问题
// @Summary      删除问卷问题
// @Tags         基础数据
// @Produce      json
// @Param        id path string true "问题 ID"
// @Success      200  {object}  Response
// @Router       /questions/{id} [delete]
// @Security     BearerAuth
func (c *DirectoryController) DeleteQuestion(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	if err := c.directoryService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// CreateLocation 创建地点
// @Summary      创建地点
// @Tags         基础数据
// @Accept       json
// @Produce      json
// @Param        request body model.LocationModel true "地点信息"
// @Success      200  {object}  Response
// @Router       /locations [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateLocation(ctx *gin.Context) {
	var req model.LocationModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	location, err := c.directoryService.CreateLocation(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, location)
}

// ListLocations 查询地点列表
// @Summary      查询地点列表
// @Tags         基础数据
// @Produce      json
// @Success      200  {object}  Response
// @Router       /locations [get]
// @Security     BearerAuth
func (c *DirectoryController) ListLocations(ctx *gin.Context) {
	locations, err := c.directoryService.ListLocations(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, locations)
}

// DeleteLocation 删除地点
// @Summary      删除地点
// @Tags         基础数据
// @Produce      json
// @Param        id path string true "地点 ID"
// @Success      200  {object}  Response
// @Router       /locations/{id} [delete]
// @Security     BearerAuth
func (c *DirectoryController) DeleteLocation(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	if err := c.directoryService.DeleteLocation(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// CreateEquipment 创建设备
// @Summary      创建设备
// @Tags         基础数据
// @Accept       json
// @Produce      json
// @Param        request body model.EquipmentModel true "设备信息"
// @Success      200  {object}  Response
// @Router       /equipment [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateEquipment(ctx *gin.Context) {
	var req model.EquipmentModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	equipment, err := c.directoryService.CreateEquipment(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, equipment)
}

// ListEquipment 查询设备列表
// @Summary      查询设备列表
// @Tags         基础数据
// @Produce      json
// @Success      200  {object}  Response
// @Router       /equipment [get]
// @Security     BearerAuth
func (c *DirectoryController) ListEquipment(ctx *gin.Context) {
	equipment, err := c.directoryService.ListEquipment(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, equipment)
}

// DeleteEquipment 删除设备
// @Summary      删除设备
// @Tags         基础数据
// @Produce      json
// @Param        id path string true "设备 ID"
// @Success      200  {object}  Response
// @Router       /equipment/{id} [delete]
// @Security     BearerAuth
func (c *DirectoryController) DeleteEquipment(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	if err := c.directoryService.DeleteEquipment(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// CreateDeviationCategory 创建偏差分类
// @Summary      创建偏差分类
// @Tags         基础数据
// @Accept       json
// @Produce      json
// @Param        request body model.DeviationCategoryModel true "分类信息"
// @Success      200  {object}  Response
// @Router       /deviation-categories [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateDeviationCategory(ctx *gin.Context) {
	var req model.DeviationCategoryModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	category, err := c.directoryService.CreateDeviationCategory(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, category)
}

// ListDeviationCategories 查询偏差分类列表
// @Summary      查询偏差分类列表
// @Tags         基础数据
// @Produce      json
// @Success      200  {object}  Response
// @Router       /deviation-categories [get]
// @Security     BearerAuth
func (c *DirectoryController) ListDeviationCategories(ctx *gin.Context) {
	categories, err := c.directoryService.ListDeviationCategories(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, categories)
}

// CreateChangeCategory 创建变更分类
// @Summary      创建变更分类
// @Tags         基础数据
// @Accept       json
// @Produce      json
// @Param        request body model.ChangeCategoryModel true "分类信息"
// @Success      200  {object}  Response
// @Router       /change-categories [post]
// @Security     BearerAuth
func (c *DirectoryController) CreateChangeCategory(ctx *gin.Context) {
	var req model.ChangeCategoryModel
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	category, err := c.directoryService.CreateChangeCategory(ctx.Request.Context(), &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, category)
}

// ListChangeCategories 查询变更分类列表
// @Summary      查询变更分类列表
// @Tags         基础数据
// @Produce      json
// @Success      200  {object}  Response
// @Router       /change-categories [get]
// @Security     BearerAuth
func (c *DirectoryController) ListChangeCategories(ctx *gin.Context) {
	categories, err := c.directoryService.ListChangeCategories(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, categories)
}
