package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// TestQueryService_SearchByNumber 测试按引用编号跨类型检索
func TestQueryService_SearchByNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	queries := service.NewQueryService(env.db)

	d := env.createDeviation(t)
	env.deviationToImpactDone(t, d.ID)
	_, err := env.capas.Create(ctx, env.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: env.prodDept.ID,
	}, nil)
	require.NoError(t, err)
	env.createDocument(t, model.DocTypeProcedure)

	// 前缀命中偏差及其 CAPA 和同前缀文档
	result, err := queries.SearchByNumber("PRO-")
	require.NoError(t, err)
	assert.Len(t, result.Deviations, 1)
	assert.Len(t, result.CAPAs, 1)
	assert.Len(t, result.Documents, 1)
	assert.Empty(t, result.ChangeControls)

	// 精确编号只命中对应类型
	result, err = queries.SearchByNumber("PRO-DEV001-CAPA01")
	require.NoError(t, err)
	assert.Empty(t, result.Deviations)
	assert.Len(t, result.CAPAs, 1)

	// 空编号拒绝
	_, err = queries.SearchByNumber("   ")
	assert.Error(t, err)
}

// TestQueryService_ListRecords 测试单类记录分页列表
func TestQueryService_ListRecords(t *testing.T) {
	env := newTestEnv(t)
	queries := service.NewQueryService(env.db)

	for i := 0; i < 3; i++ {
		env.createDeviation(t)
	}

	rows, total, err := queries.ListRecords(&service.ListRecordsFilter{
		RecordType: "deviation",
		Page:       1,
		PageSize:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 2)

	rows, total, err = queries.ListRecords(&service.ListRecordsFilter{
		RecordType: "deviation",
		Page:       2,
		PageSize:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 1)

	// 未知记录类型拒绝
	_, _, err = queries.ListRecords(&service.ListRecordsFilter{RecordType: "invoice"})
	assert.Error(t, err)
}

// TestStatisticsService_Overview 测试质量记录总览统计
func TestStatisticsService_Overview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stats := service.NewStatisticsService(env.db)

	d := env.createDeviation(t)
	env.deviationToImpactDone(t, d.ID)
	c, err := env.capas.Create(ctx, env.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: env.prodDept.ID,
	}, nil)
	require.NoError(t, err)

	// 一条超期 CAPA
	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, env.db.Model(&model.CAPAModel{}).Where("id = ?", c.ID).
		Update("due_date", &past).Error)

	overview, err := stats.GetQualityOverview()
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.TotalDeviations)
	assert.Equal(t, int64(1), overview.TotalCAPAs)
	// 首条 CAPA 已把偏差推进到 CAPA Initiated, 不再计为开放
	assert.Equal(t, int64(0), overview.OpenDeviations)
	assert.Equal(t, int64(1), overview.OverdueCAPAs)
	assert.Equal(t, int64(0), overview.ClosedCAPAs)
	assert.Equal(t, float64(0), overview.CAPAClosureRate)
}

// TestStatisticsService_ByStatus 测试按状态统计
func TestStatisticsService_ByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stats := service.NewStatisticsService(env.db)

	env.createDeviation(t)
	d := env.createDeviation(t)
	_, err := env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)

	rows, err := stats.GetRecordStatisticsByStatus()
	require.NoError(t, err)

	counts := make(map[string]int64)
	for _, row := range rows {
		counts[row.RecordType+"/"+row.Status] = row.Count
	}
	assert.Equal(t, int64(1), counts["deviation/"+string(workflow.StatusDraft)])
	assert.Equal(t, int64(1), counts["deviation/"+string(workflow.StatusUnderDeptReview)])
}

// TestStatisticsService_ByDepartment 测试按部门统计偏差
func TestStatisticsService_ByDepartment(t *testing.T) {
	env := newTestEnv(t)
	stats := service.NewStatisticsService(env.db)

	env.createDeviation(t)
	env.createDeviation(t)

	rows, err := stats.GetDeviationStatisticsByDepartment()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, env.prodDept.ID, rows[0].DepartmentID)
	assert.Equal(t, "Production", rows[0].DepartmentName)
	assert.Equal(t, int64(2), rows[0].Count)
}
