package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// StatisticsController 质量统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
}

// NewStatisticsController 创建质量统计控制器
func NewStatisticsController(statisticsService service.StatisticsService) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
	}
}

// ByStatus 按状态统计记录
// @Summary      按状态统计记录
// @Description  偏差、CAPA、变更控制各状态的记录数
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Router       /statistics/by-status [get]
// @Security     BearerAuth
func (c *StatisticsController) ByStatus(ctx *gin.Context) {
	stats, err := c.statisticsService.GetRecordStatisticsByStatus()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}

// ByDepartment 按部门统计偏差
// @Summary      按部门统计偏差
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Router       /statistics/by-department [get]
// @Security     BearerAuth
func (c *StatisticsController) ByDepartment(ctx *gin.Context) {
	stats, err := c.statisticsService.GetDeviationStatisticsByDepartment()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}

// ByTime 按时间统计偏差
// @Summary      按时间统计偏差
// @Description  按创建日期统计偏差数量
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Router       /statistics/by-time [get]
// @Security     BearerAuth
func (c *StatisticsController) ByTime(ctx *gin.Context) {
	stats, err := c.statisticsService.GetRecordStatisticsByTime()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}

// Overview 质量总览
// @Summary      质量总览
// @Description  记录总量、未关闭偏差、超期 CAPA 和 CAPA 关闭率
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Router       /statistics/overview [get]
// @Security     BearerAuth
func (c *StatisticsController) Overview(ctx *gin.Context) {
	overview, err := c.statisticsService.GetQualityOverview()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, overview)
}
