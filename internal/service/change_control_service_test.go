package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// TestChangeControlService_Create 测试变更控制创建
func TestChangeControlService_Create(t *testing.T) {
	env := newTestEnv(t)

	cc, err := env.changeControls.Create(context.Background(), env.creator, &model.ChangeControlModel{
		ChangeType:   model.ChangeMajor,
		Duration:     model.ChangeTemporary,
		DepartmentID: env.prodDept.ID,
		Description:  "interim use of backup autoclave",
		RiskScore:    12,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDraft), cc.Status)
	assert.Equal(t, "PRO-CC001", cc.ChangeNumber)

	// 非法变更类型
	var svcErr *service.Error
	_, err = env.changeControls.Create(context.Background(), env.creator, &model.ChangeControlModel{
		ChangeType:   "urgent",
		DepartmentID: env.prodDept.ID,
		Description:  "x",
	}, nil)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestChangeControlService_FullLifecycle 测试变更控制完整链路到关闭
func TestChangeControlService_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cc, err := env.changeControls.Create(ctx, env.creator, &model.ChangeControlModel{
		ChangeType:   model.ChangeMinor,
		Duration:     model.ChangePermanent,
		DepartmentID: env.prodDept.ID,
		Description:  "update cleaning agent concentration",
	}, nil)
	require.NoError(t, err)

	cc, err = env.changeControls.Submit(ctx, env.creator, cc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusUnderDeptReview), cc.Status)

	cc, err = env.changeControls.Review(ctx, env.reviewer, cc.ID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	cc, err = env.changeControls.QAReview(ctx, env.approver, cc.ID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	cc, err = env.changeControls.AssignTeam(ctx, env.approver, cc.ID, service.TeamInput{MemberIDs: []string{env.member.UserID}})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusTeamAssigned), cc.Status)

	cc, err = env.changeControls.RecordImpact(ctx, env.member, cc.ID, []service.AnswerInput{
		{QuestionID: env.ratingQuestion.ID, Answer: []byte(`2`)},
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusImpactDone), cc.Status)

	cc, err = env.changeControls.RecordHistoricalCheck(ctx, env.member, cc.ID, service.HistoricalCheckInput{
		Remarks: "no similar change in the last three years",
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusHistoricalDone), cc.Status)
	assert.Equal(t, "no similar change in the last three years", cc.HistoricalCheckRemarks)

	cc, err = env.changeControls.Acknowledge(ctx, env.approver, cc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusAcknowledged), cc.Status)
	assert.Equal(t, env.approver.UserID, cc.AcknowledgedBy)
	require.NotNil(t, cc.AcknowledgedAt)

	cc, err = env.changeControls.Close(ctx, env.approver, cc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusClosed), cc.Status)
	assert.Equal(t, env.approver.UserID, cc.ClosedBy)
	require.NotNil(t, cc.ClosedAt)
}

// TestChangeControlService_HistoricalCheckGuards 测试历史核查守卫
func TestChangeControlService_HistoricalCheckGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cc, err := env.changeControls.Create(ctx, env.creator, &model.ChangeControlModel{
		DepartmentID: env.prodDept.ID,
		Description:  "change",
	}, nil)
	require.NoError(t, err)

	var svcErr *service.Error

	// 备注必填
	_, err = env.changeControls.RecordHistoricalCheck(ctx, env.member, cc.ID, service.HistoricalCheckInput{})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	// Draft 状态不允许历史核查
	_, err = env.changeControls.RecordHistoricalCheck(ctx, env.member, cc.ID, service.HistoricalCheckInput{Remarks: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	// 未确认前不能关闭
	_, err = env.changeControls.Close(ctx, env.approver, cc.ID)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}
