package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// TestCAPAService_CreateTransitionsDeviation 测试首个 CAPA 创建时偏差转入 CAPA Initiated
func TestCAPAService_CreateTransitionsDeviation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.createDeviation(t)
	env.deviationToImpactDone(t, d.ID)

	c1, err := env.capas.Create(ctx, env.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: env.prodDept.ID,
		RootCause:    "seal degradation",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDraft), c1.Status)
	assert.Equal(t, "PRO-DEV001-CAPA01", c1.CAPANumber)

	detail, err := env.deviations.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCAPAInitiated), detail.Deviation.Status)
	assert.Len(t, detail.CAPAs, 1)

	// 第二个 CAPA 不再转移偏差状态,编号继续递增
	c2, err := env.capas.Create(ctx, env.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: env.prodDept.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "PRO-DEV001-CAPA02", c2.CAPANumber)

	detail, err = env.deviations.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCAPAInitiated), detail.Deviation.Status)
}

// TestCAPAService_CreateRequiresImpactDone 测试偏差未完成影响评估时拒绝创建 CAPA
func TestCAPAService_CreateRequiresImpactDone(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDeviation(t)

	var svcErr *service.Error
	_, err := env.capas.Create(context.Background(), env.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: env.prodDept.ID,
	}, nil)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestCAPAService_ImmediateActionsBranch 测试立即措施分支到关闭
func TestCAPAService_ImmediateActionsBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.createCAPAInInvestigationDone(t)

	c, err := env.capas.StartImmediateActions(ctx, env.approver, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusImmediateActions), c.Status)

	c, err = env.capas.Close(ctx, env.approver, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusClosed), c.Status)
}

// TestCAPAService_InitiateChangeControl 测试由 CAPA 发起变更控制
func TestCAPAService_InitiateChangeControl(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.createCAPAInInvestigationDone(t)

	c, err := env.capas.InitiateChangeControl(ctx, env.approver, c.ID, &model.ChangeControlModel{
		ChangeType:   model.ChangeMinor,
		DepartmentID: env.prodDept.ID,
		Description:  "replace the seal supplier",
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusChangeInitiated), c.Status)
	require.NotEmpty(t, c.ChangeControlID)

	// 变更控制回链 CAPA,处于 Draft
	ccDetail, err := env.changeControls.Get(ctx, c.ChangeControlID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, ccDetail.ChangeControl.CAPAID)
	assert.Equal(t, string(workflow.StatusDraft), ccDetail.ChangeControl.Status)
	assert.Equal(t, "PRO-CC001", ccDetail.ChangeControl.ChangeNumber)

	c, err = env.capas.Close(ctx, env.approver, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusClosed), c.Status)
}

// TestCAPAService_InvestigationRequiresRootCause 测试调查结论必填根因
func TestCAPAService_InvestigationRequiresRootCause(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCAPAInTeamAssigned(t)

	var svcErr *service.Error
	_, err := env.capas.RecordInvestigation(context.Background(), env.member, c.ID, service.InvestigationInput{})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestCAPAService_ListOverdue 测试超期 CAPA 查询
func TestCAPAService_ListOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.createCAPAInTeamAssigned(t)

	past := time.Now().Add(-48 * time.Hour)
	_, err := env.capas.RecordInvestigation(ctx, env.member, c.ID, service.InvestigationInput{
		RootCause: "operator training gap",
		DueDate:   &past,
	})
	require.NoError(t, err)

	overdue, err := env.capas.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, c.ID, overdue[0].ID)

	// 关闭后不再出现在超期列表
	_, err = env.capas.StartImmediateActions(ctx, env.approver, c.ID)
	require.NoError(t, err)
	_, err = env.capas.Close(ctx, env.approver, c.ID)
	require.NoError(t, err)

	overdue, err = env.capas.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

// createCAPAInTeamAssigned 创建并推进 CAPA 到调查组已指派
func (e *testEnv) createCAPAInTeamAssigned(t *testing.T) *model.CAPAModel {
	ctx := context.Background()
	d := e.createDeviation(t)
	e.deviationToImpactDone(t, d.ID)

	c, err := e.capas.Create(ctx, e.approver, &model.CAPAModel{
		DeviationID:  d.ID,
		DepartmentID: e.prodDept.ID,
	}, nil)
	require.NoError(t, err)

	_, err = e.capas.Submit(ctx, e.creator, c.ID)
	require.NoError(t, err)
	_, err = e.capas.Review(ctx, e.reviewer, c.ID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	_, err = e.capas.QAReview(ctx, e.approver, c.ID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	c, err = e.capas.AssignTeam(ctx, e.approver, c.ID, service.TeamInput{MemberIDs: []string{e.member.UserID}})
	require.NoError(t, err)
	return c
}

// createCAPAInInvestigationDone 创建并推进 CAPA 到调查完成
func (e *testEnv) createCAPAInInvestigationDone(t *testing.T) *model.CAPAModel {
	c := e.createCAPAInTeamAssigned(t)
	due := time.Now().Add(30 * 24 * time.Hour)
	c, err := e.capas.RecordInvestigation(context.Background(), e.member, c.ID, service.InvestigationInput{
		RootCause:        "worn seal on pump P-102",
		CorrectiveAction: "replace seal and verify torque",
		PreventiveAction: "add seal check to PM schedule",
		DueDate:          &due,
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusInvestigationDone), c.Status)
	return c
}
