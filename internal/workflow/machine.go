package workflow

import (
	"fmt"
)

// Status 工作流状态
type Status string

// 质量记录工作流状态定义
// Deviation/CAPA/ChangeControl 共享同一状态集合的子集
const (
	StatusDraft              Status = "Draft"
	StatusUnderDeptReview    Status = "Under Department Head Review"
	StatusApprovedByDeptHead Status = "Approved By Department Head"
	StatusAcceptedByQA       Status = "Accepted By QA"
	StatusTeamAssigned       Status = "Investigation Team Assigned"
	StatusImpactDone         Status = "Team Impact Assessment Done"
	StatusInvestigationDone  Status = "Team Investigation Done"
	StatusImmediateActions   Status = "Immediate Actions In Progress"
	StatusChangeInitiated    Status = "Change Control Initiated"
	StatusCAPAInitiated      Status = "CAPA Initiated"
	StatusHistoricalDone     Status = "Historical Check Done"
	StatusAcknowledged       Status = "Acknowledged By Approver"
	StatusClosed             Status = "Closed"
)

// Action 工作流动作
type Action string

// 工作流动作定义
const (
	ActionSubmit                Action = "submit"
	ActionReviewApprove         Action = "review_approve"
	ActionReviewReject          Action = "review_reject"
	ActionQAApprove             Action = "qa_approve"
	ActionQAReject              Action = "qa_reject"
	ActionAssignTeam            Action = "assign_team"
	ActionRecordImpact          Action = "record_impact"
	ActionRecordInvestigation   Action = "record_investigation"
	ActionRecordHistoricalCheck Action = "record_historical_check"
	ActionStartImmediateActions Action = "start_immediate_actions"
	ActionInitiateChangeControl Action = "initiate_change_control"
	ActionInitiateCAPA          Action = "initiate_capa"
	ActionAcknowledge           Action = "acknowledge"
	ActionClose                 Action = "close"
)

// 角色名称,与 roles 表中的内置角色对应
const (
	RoleCreator  = "Creator"
	RoleReviewer = "Reviewer"
	RoleApprover = "Approver"
	RoleAdmin    = "Admin"
)

// QADepartmentName QA 部门名称,QA 部门拥有跨部门审查权限
const QADepartmentName = "Quality Assurance"

// Actor 执行工作流动作的用户
type Actor struct {
	UserID       string
	Role         string // 角色名称
	DepartmentID string
	QA           bool // 是否属于 QA 部门
}

// Transition 状态转移定义
// Roles 为空表示任意已认证用户;SameDepartment 要求操作者属于记录所在部门(QA 豁免);
// TeamMember 要求操作者是调查组成员
type Transition struct {
	From           Status
	Action         Action
	To             Status
	Roles          []string
	SameDepartment bool
	TeamMember     bool
}

// StateError 状态不满足转移条件的错误
type StateError struct {
	Entity  string
	Current Status
	Action  Action
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s in status %q does not allow action %q", e.Entity, e.Current, e.Action)
}

// AuthError 操作者不满足转移授权条件的错误
type AuthError struct {
	Entity string
	Action Action
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("not authorized to %s %s: %s", e.Action, e.Entity, e.Reason)
}

// Machine 通用状态机
// Deviation/CAPA/ChangeControl 共享同一实现,仅转移表不同
type Machine struct {
	entity      string
	transitions []Transition
}

// NewMachine 创建状态机
func NewMachine(entity string, transitions []Transition) *Machine {
	return &Machine{entity: entity, transitions: transitions}
}

// Entity 返回状态机对应的实体名称
func (m *Machine) Entity() string {
	return m.entity
}

// Resolve 根据当前状态和动作解析转移
// 动作存在但当前状态不允许时返回 *StateError
func (m *Machine) Resolve(current Status, action Action) (*Transition, error) {
	known := false
	for i := range m.transitions {
		t := &m.transitions[i]
		if t.Action != action {
			continue
		}
		known = true
		if t.From == current {
			return t, nil
		}
	}
	if known {
		return nil, &StateError{Entity: m.entity, Current: current, Action: action}
	}
	return nil, fmt.Errorf("unknown action %q for %s", action, m.entity)
}

// Authorize 校验操作者是否满足转移的授权条件
// entityDept 为记录所属部门 ID,teamMember 表示操作者是否为调查组成员
func (m *Machine) Authorize(t *Transition, actor Actor, entityDept string, teamMember bool) error {
	if len(t.Roles) > 0 && !containsRole(t.Roles, actor.Role) {
		return &AuthError{Entity: m.entity, Action: t.Action, Reason: fmt.Sprintf("role %q is not permitted", actor.Role)}
	}
	if t.SameDepartment && !actor.QA && actor.DepartmentID != entityDept {
		return &AuthError{Entity: m.entity, Action: t.Action, Reason: "actor belongs to a different department"}
	}
	if t.TeamMember && !teamMember {
		return &AuthError{Entity: m.entity, Action: t.Action, Reason: "actor is not a member of the investigation team"}
	}
	return nil
}

// Statuses 返回状态机可达的全部状态(按转移表顺序去重)
func (m *Machine) Statuses() []Status {
	seen := make(map[Status]bool)
	var out []Status
	add := func(s Status) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, t := range m.transitions {
		add(t.From)
		add(t.To)
	}
	return out
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
