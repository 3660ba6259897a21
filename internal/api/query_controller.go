package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// QueryController 跨记录查询控制器
type QueryController struct {
	queryService service.QueryService
	auditService service.AuditLogService
}

// NewQueryController 创建跨记录查询控制器
func NewQueryController(queryService service.QueryService, auditService service.AuditLogService) *QueryController {
	return &QueryController{
		queryService: queryService,
		auditService: auditService,
	}
}

// Search 按引用编号检索
// @Summary      按引用编号检索
// @Description  编号前缀匹配,同时检索偏差、CAPA、变更控制和受控文档
// @Tags         查询统计
// @Produce      json
// @Param        number query string true "引用编号"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /search [get]
// @Security     BearerAuth
func (c *QueryController) Search(ctx *gin.Context) {
	number := ctx.Query("number")

	result, err := c.queryService.SearchByNumber(number)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, result)
}

// ListRecords 分页查询质量记录
// @Summary      分页查询质量记录
// @Description  按记录类型分页获取质量记录,支持多条件查询、排序
// @Tags         查询统计
// @Produce      json
// @Param        record_type query string true "记录类型" Enums(deviation, capa, change_control)
// @Param        status query string false "状态"
// @Param        department_id query string false "部门 ID"
// @Param        start_time query string false "创建时间起始"
// @Param        end_time query string false "创建时间结束"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        sort_by query string false "排序字段" default(created_at)
// @Param        order query string false "排序方向" Enums(asc, desc) default(desc)
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /records [get]
// @Security     BearerAuth
func (c *QueryController) ListRecords(ctx *gin.Context) {
	filter := &service.ListRecordsFilter{
		RecordType: ctx.Query("record_type"),
		SortBy:     ctx.Query("sort_by"),
		Order:      ctx.Query("order"),
	}
	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := ctx.Query("start_time"); v != "" {
		filter.StartTime = &v
	}
	if v := ctx.Query("end_time"); v != "" {
		filter.EndTime = &v
	}

	// 手动解析分页参数
	if pageStr := ctx.Query("page"); pageStr != "" {
		var page int
		if _, err := fmt.Sscanf(pageStr, "%d", &page); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if pageSizeStr := ctx.Query("page_size"); pageSizeStr != "" {
		var pageSize int
		if _, err := fmt.Sscanf(pageSizeStr, "%d", &pageSize); err == nil && pageSize > 0 {
			filter.PageSize = pageSize
		}
	}

	// 设置默认值
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	records, total, err := c.queryService.ListRecords(filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	// 计算总页数
	totalPage := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))

	Paginated(ctx, records, PaginationInfo{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// History 获取记录审计历史
// @Summary      获取记录审计历史
// @Description  按资源类型和 ID 获取审计日志
// @Tags         查询统计
// @Produce      json
// @Param        resourceType path string true "资源类型"
// @Param        id path string true "资源 ID"
// @Success      200  {object}  Response
// @Router       /audit/{resourceType}/{id} [get]
// @Security     BearerAuth
func (c *QueryController) History(ctx *gin.Context) {
	resourceType := ctx.Param("resourceType")
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	logs, err := c.auditService.History(resourceType, id)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to get audit history", err.Error())
		return
	}

	Success(ctx, logs)
}
