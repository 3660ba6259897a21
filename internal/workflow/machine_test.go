package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// TestMachine_Resolve 测试状态转移解析
func TestMachine_Resolve(t *testing.T) {
	m := workflow.DeviationMachine()

	// 正常转移
	tr, err := m.Resolve(workflow.StatusDraft, workflow.ActionSubmit)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusUnderDeptReview, tr.To)

	// 动作存在但当前状态不允许
	_, err = m.Resolve(workflow.StatusDraft, workflow.ActionAssignTeam)
	require.Error(t, err)
	var stateErr *workflow.StateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, workflow.StatusDraft, stateErr.Current)

	// 该实体不存在的动作
	_, err = m.Resolve(workflow.StatusDraft, workflow.ActionRecordHistoricalCheck)
	require.Error(t, err)
	assert.NotErrorAs(t, err, &stateErr)
}

// TestMachine_RejectReturnsToDraft 测试审查拒绝回到草稿
func TestMachine_RejectReturnsToDraft(t *testing.T) {
	for _, m := range []*workflow.Machine{
		workflow.DeviationMachine(),
		workflow.CAPAMachine(),
		workflow.ChangeControlMachine(),
	} {
		tr, err := m.Resolve(workflow.StatusUnderDeptReview, workflow.ActionReviewReject)
		require.NoError(t, err, m.Entity())
		assert.Equal(t, workflow.StatusDraft, tr.To, m.Entity())

		tr, err = m.Resolve(workflow.StatusApprovedByDeptHead, workflow.ActionQAReject)
		require.NoError(t, err, m.Entity())
		assert.Equal(t, workflow.StatusDraft, tr.To, m.Entity())
	}
}

// TestMachine_Authorize 测试转移授权校验
func TestMachine_Authorize(t *testing.T) {
	m := workflow.DeviationMachine()
	tr, err := m.Resolve(workflow.StatusUnderDeptReview, workflow.ActionReviewApprove)
	require.NoError(t, err)

	// 角色不满足
	actor := workflow.Actor{UserID: "u1", Role: workflow.RoleCreator, DepartmentID: "dept-1"}
	err = m.Authorize(tr, actor, "dept-1", false)
	var authErr *workflow.AuthError
	assert.ErrorAs(t, err, &authErr)

	// 角色满足但部门不同
	actor.Role = workflow.RoleReviewer
	actor.DepartmentID = "dept-2"
	err = m.Authorize(tr, actor, "dept-1", false)
	assert.ErrorAs(t, err, &authErr)

	// QA 豁免部门限制
	actor.QA = true
	assert.NoError(t, m.Authorize(tr, actor, "dept-1", false))

	// 同部门 Reviewer 通过
	actor = workflow.Actor{UserID: "u2", Role: workflow.RoleReviewer, DepartmentID: "dept-1"}
	assert.NoError(t, m.Authorize(tr, actor, "dept-1", false))
}

// TestMachine_AuthorizeTeamMember 测试调查组成员限制
func TestMachine_AuthorizeTeamMember(t *testing.T) {
	m := workflow.DeviationMachine()
	tr, err := m.Resolve(workflow.StatusTeamAssigned, workflow.ActionRecordImpact)
	require.NoError(t, err)

	actor := workflow.Actor{UserID: "u1", Role: workflow.RoleCreator, DepartmentID: "dept-1"}
	var authErr *workflow.AuthError
	assert.ErrorAs(t, m.Authorize(tr, actor, "dept-1", false), &authErr)
	assert.NoError(t, m.Authorize(tr, actor, "dept-1", true))
}

// TestCAPAMachine_Branches 测试 CAPA 调查后的两条分支
func TestCAPAMachine_Branches(t *testing.T) {
	m := workflow.CAPAMachine()

	tr, err := m.Resolve(workflow.StatusInvestigationDone, workflow.ActionStartImmediateActions)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusImmediateActions, tr.To)

	tr, err = m.Resolve(workflow.StatusInvestigationDone, workflow.ActionInitiateChangeControl)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusChangeInitiated, tr.To)

	// 两条分支都能关闭
	for _, from := range []workflow.Status{workflow.StatusImmediateActions, workflow.StatusChangeInitiated} {
		tr, err = m.Resolve(from, workflow.ActionClose)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusClosed, tr.To)
	}
}

// TestChangeControlMachine_Chain 测试变更控制后段链路
func TestChangeControlMachine_Chain(t *testing.T) {
	m := workflow.ChangeControlMachine()

	steps := []struct {
		from   workflow.Status
		action workflow.Action
		to     workflow.Status
	}{
		{workflow.StatusTeamAssigned, workflow.ActionRecordImpact, workflow.StatusImpactDone},
		{workflow.StatusImpactDone, workflow.ActionRecordHistoricalCheck, workflow.StatusHistoricalDone},
		{workflow.StatusHistoricalDone, workflow.ActionAcknowledge, workflow.StatusAcknowledged},
		{workflow.StatusAcknowledged, workflow.ActionClose, workflow.StatusClosed},
	}
	for _, step := range steps {
		tr, err := m.Resolve(step.from, step.action)
		require.NoError(t, err, string(step.action))
		assert.Equal(t, step.to, tr.To, string(step.action))
	}
}

// TestMachine_Statuses 测试状态集合去重
func TestMachine_Statuses(t *testing.T) {
	statuses := workflow.DeviationMachine().Statuses()
	seen := make(map[workflow.Status]int)
	for _, s := range statuses {
		seen[s]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, string(s))
	}
	assert.Contains(t, statuses, workflow.StatusDraft)
	assert.Contains(t, statuses, workflow.StatusCAPAInitiated)
}
