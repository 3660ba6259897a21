package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// TestDeviationService_Create 测试偏差创建
func TestDeviationService_Create(t *testing.T) {
	env := newTestEnv(t)

	d, err := env.deviations.Create(context.Background(), env.creator, &model.DeviationModel{
		PlannedType:  model.DeviationUnplanned,
		DepartmentID: env.prodDept.ID,
		Description:  "filter integrity failure",
	}, []service.AttachmentInput{
		{Field: "evidence", FileName: "photo.png", URL: "http://localhost/uploads/photo.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDraft), d.Status)
	assert.Equal(t, env.creator.UserID, d.CreatedBy)
	assert.Equal(t, "PRO-DEV001", d.DeviationNumber)

	detail, err := env.deviations.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, "photo.png", detail.Attachments[0].FileName)

	// 缺少描述时拒绝
	_, err = env.deviations.Create(context.Background(), env.creator, &model.DeviationModel{
		DepartmentID: env.prodDept.ID,
	}, nil)
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestDeviationService_HappyPath 测试偏差完整审批链
func TestDeviationService_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.createDeviation(t)

	d, err := env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusUnderDeptReview), d.Status)
	assert.Equal(t, env.creator.UserID, d.SubmittedBy)
	require.NotNil(t, d.SubmittedAt)

	d, err = env.deviations.Review(ctx, env.reviewer, d.ID, service.ReviewInput{Approve: true, Comments: "looks complete"})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusApprovedByDeptHead), d.Status)
	assert.Equal(t, "looks complete", d.ReviewComments)

	d, err = env.deviations.QAReview(ctx, env.approver, d.ID, service.ReviewInput{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusAcceptedByQA), d.Status)
	assert.Equal(t, env.approver.UserID, d.QAReviewer)

	d, err = env.deviations.AssignTeam(ctx, env.approver, d.ID, service.TeamInput{MemberIDs: []string{env.member.UserID}})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusTeamAssigned), d.Status)
	assert.NotEmpty(t, d.InvestigationTeamID)

	d, err = env.deviations.RecordImpact(ctx, env.member, d.ID, []service.AnswerInput{
		{QuestionID: env.yesNoQuestion.ID, Answer: []byte(`true`)},
		{QuestionID: env.ratingQuestion.ID, Answer: []byte(`4`), Comment: "high severity"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusImpactDone), d.Status)
	assert.NotEmpty(t, d.ImpactAssessmentID)

	detail, err := env.deviations.Get(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Team)
	require.NotNil(t, detail.Assessment)
	assert.Len(t, detail.Assessment.Answers, 2)

	// 每一步都有审计记录
	history, err := env.audit.History("deviation", d.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 6)
}

// TestDeviationService_RejectReturnsToDraft 测试审查拒绝回到草稿
func TestDeviationService_RejectReturnsToDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.createDeviation(t)

	_, err := env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)

	d, err = env.deviations.Review(ctx, env.reviewer, d.ID, service.ReviewInput{Approve: false, Comments: "missing batch number"})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDraft), d.Status)
	assert.Equal(t, "missing batch number", d.ReviewComments)

	// 回到草稿后可再次提交
	_, err = env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)
}

// TestDeviationService_TransitionGuards 测试状态与授权守卫
func TestDeviationService_TransitionGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.createDeviation(t)

	var svcErr *service.Error

	// Draft 状态不允许指派调查组
	_, err := env.deviations.AssignTeam(ctx, env.approver, d.ID, service.TeamInput{MemberIDs: []string{env.member.UserID}})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	// 非 Creator 角色不能提交
	_, err = env.deviations.Submit(ctx, env.reviewer, d.ID)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	// 其他部门的 Reviewer 不能审查
	_, err = env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)
	outsider := workflow.Actor{UserID: "outsider", Role: workflow.RoleReviewer, DepartmentID: "dept-other"}
	_, err = env.deviations.Review(ctx, outsider, d.ID, service.ReviewInput{Approve: true})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	// 记录不存在
	_, err = env.deviations.Submit(ctx, env.creator, "missing")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.Status)
}

// TestDeviationService_ImpactRequiresTeamMember 测试影响评估仅限调查组成员
func TestDeviationService_ImpactRequiresTeamMember(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDeviation(t)
	env.deviationToTeamAssigned(t, d.ID)

	answers := []service.AnswerInput{{QuestionID: env.yesNoQuestion.ID, Answer: []byte(`false`)}}

	var svcErr *service.Error
	_, err := env.deviations.RecordImpact(context.Background(), env.creator, d.ID, answers)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	_, err = env.deviations.RecordImpact(context.Background(), env.member, d.ID, answers)
	require.NoError(t, err)
}

// TestDeviationService_AnswerValidation 测试影响评估答案类型校验
func TestDeviationService_AnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	var svcErr *service.Error

	cases := []struct {
		name       string
		questionID string
		answer     string
	}{
		{"yes_no rejects string", "", `"yes"`},
		{"yes_no rejects number", "", `1`},
		{"rating rejects out of range", "rating", `6`},
		{"rating rejects zero", "rating", `0`},
		{"rating rejects bool", "rating", `true`},
	}
	for _, c := range cases {
		d := env.createDeviation(t)
		env.deviationToTeamAssigned(t, d.ID)

		qid := env.yesNoQuestion.ID
		if c.questionID == "rating" {
			qid = env.ratingQuestion.ID
		}
		_, err := env.deviations.RecordImpact(ctx, env.member, d.ID, []service.AnswerInput{
			{QuestionID: qid, Answer: []byte(c.answer)},
		})
		require.ErrorAs(t, err, &svcErr, c.name)
		assert.Equal(t, http.StatusBadRequest, svcErr.Status, c.name)
	}

	// 未知问题 ID
	d := env.createDeviation(t)
	env.deviationToTeamAssigned(t, d.ID)
	_, err := env.deviations.RecordImpact(ctx, env.member, d.ID, []service.AnswerInput{
		{QuestionID: "missing", Answer: []byte(`true`)},
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.Status)

	// 空答案集
	_, err = env.deviations.RecordImpact(ctx, env.member, d.ID, nil)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestDeviationService_Update 测试草稿修改限制
func TestDeviationService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.createDeviation(t)

	updated, err := env.deviations.Update(ctx, env.creator, d.ID, &model.DeviationModel{
		PlannedType: model.DeviationPlanned,
		Description: "revised description",
	})
	require.NoError(t, err)
	assert.Equal(t, "revised description", updated.Description)
	assert.Equal(t, model.DeviationPlanned, updated.PlannedType)

	// 非创建者不能修改
	var svcErr *service.Error
	_, err = env.deviations.Update(ctx, env.reviewer, d.ID, &model.DeviationModel{Description: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)

	// 提交后不能修改
	_, err = env.deviations.Submit(ctx, env.creator, d.ID)
	require.NoError(t, err)
	_, err = env.deviations.Update(ctx, env.creator, d.ID, &model.DeviationModel{Description: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
}

// TestDeviationService_List 测试过滤查询
func TestDeviationService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d1 := env.createDeviation(t)
	env.createDeviation(t)
	_, err := env.deviations.Submit(ctx, env.creator, d1.ID)
	require.NoError(t, err)

	all, err := env.deviations.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := string(workflow.StatusUnderDeptReview)
	filtered, err := env.deviations.List(ctx, &repository.DeviationFilter{
		Status:       &status,
		DepartmentID: &env.prodDept.ID,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, d1.ID, filtered[0].ID)
}

// TestDeviationRepository_TransitionConflict 测试状态条件更新的并发冲突语义
// 前置状态不匹配时更新零行并返回冲突,持有过期状态的一方不会覆盖另一方的变更
func TestDeviationRepository_TransitionConflict(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDeviation(t)

	repo := repository.NewDeviationRepository(env.db)
	err := repo.TransitionStatus(nil, d.ID, string(workflow.StatusUnderDeptReview), map[string]interface{}{
		"status": string(workflow.StatusDraft),
	})
	require.ErrorIs(t, err, repository.ErrStatusConflict)

	// 正确的前置状态照常生效
	err = repo.TransitionStatus(nil, d.ID, string(workflow.StatusDraft), map[string]interface{}{
		"status": string(workflow.StatusUnderDeptReview),
	})
	require.NoError(t, err)

	got, err := env.deviations.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusUnderDeptReview), got.Deviation.Status)
}
