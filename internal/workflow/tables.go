package workflow

// 三类质量记录的转移表
// 源系统中 CAPA/ChangeControl 的状态枚举与控制器行为不一致,
// 此处以控制器实际设置的状态为准,统一收敛到转移表中

// reviewChain 三类记录共享的前段审批链: 提交 -> 部门负责人审查 -> QA 审查 -> 指派调查组
// 拒绝一律回到 Draft
func reviewChain() []Transition {
	return []Transition{
		{From: StatusDraft, Action: ActionSubmit, To: StatusUnderDeptReview,
			Roles: []string{RoleCreator}, SameDepartment: true},
		{From: StatusUnderDeptReview, Action: ActionReviewApprove, To: StatusApprovedByDeptHead,
			Roles: []string{RoleReviewer}, SameDepartment: true},
		{From: StatusUnderDeptReview, Action: ActionReviewReject, To: StatusDraft,
			Roles: []string{RoleReviewer}, SameDepartment: true},
		{From: StatusApprovedByDeptHead, Action: ActionQAApprove, To: StatusAcceptedByQA,
			Roles: []string{RoleApprover}},
		{From: StatusApprovedByDeptHead, Action: ActionQAReject, To: StatusDraft,
			Roles: []string{RoleApprover}},
		{From: StatusAcceptedByQA, Action: ActionAssignTeam, To: StatusTeamAssigned,
			Roles: []string{RoleApprover}},
	}
}

// DeviationMachine 偏差记录状态机
func DeviationMachine() *Machine {
	transitions := append(reviewChain(),
		Transition{From: StatusTeamAssigned, Action: ActionRecordImpact, To: StatusImpactDone,
			TeamMember: true},
		Transition{From: StatusImpactDone, Action: ActionInitiateCAPA, To: StatusCAPAInitiated},
	)
	return NewMachine("deviation", transitions)
}

// CAPAMachine CAPA 记录状态机
func CAPAMachine() *Machine {
	transitions := append(reviewChain(),
		Transition{From: StatusTeamAssigned, Action: ActionRecordInvestigation, To: StatusInvestigationDone,
			TeamMember: true},
		Transition{From: StatusInvestigationDone, Action: ActionStartImmediateActions, To: StatusImmediateActions,
			Roles: []string{RoleApprover}},
		Transition{From: StatusInvestigationDone, Action: ActionInitiateChangeControl, To: StatusChangeInitiated,
			Roles: []string{RoleApprover}},
		Transition{From: StatusImmediateActions, Action: ActionClose, To: StatusClosed,
			Roles: []string{RoleApprover}},
		Transition{From: StatusChangeInitiated, Action: ActionClose, To: StatusClosed,
			Roles: []string{RoleApprover}},
	)
	return NewMachine("capa", transitions)
}

// ChangeControlMachine 变更控制记录状态机
func ChangeControlMachine() *Machine {
	transitions := append(reviewChain(),
		Transition{From: StatusTeamAssigned, Action: ActionRecordImpact, To: StatusImpactDone,
			TeamMember: true},
		Transition{From: StatusImpactDone, Action: ActionRecordHistoricalCheck, To: StatusHistoricalDone,
			TeamMember: true},
		Transition{From: StatusHistoricalDone, Action: ActionAcknowledge, To: StatusAcknowledged,
			Roles: []string{RoleApprover}},
		Transition{From: StatusAcknowledged, Action: ActionClose, To: StatusClosed,
			Roles: []string{RoleApprover}},
	)
	return NewMachine("change_control", transitions)
}
