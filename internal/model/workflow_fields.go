package model

import (
	"time"
)

// WorkflowFields 三类质量记录共享的工作流字段
// 以 gorm embedded 方式嵌入 Deviation/CAPA/ChangeControl 模型
type WorkflowFields struct {
	Status         string     `gorm:"type:varchar(64);not null;index" json:"status"`
	CreatedBy      string     `gorm:"type:varchar(64);not null;index" json:"created_by"`
	SubmittedBy    string     `gorm:"type:varchar(64)" json:"submitted_by,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ReviewedBy     string     `gorm:"type:varchar(64)" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewComments string     `gorm:"type:text" json:"review_comments,omitempty"` // 被拒后重审时覆盖,不清除
	QAReviewer     string     `gorm:"type:varchar(64)" json:"qa_reviewer,omitempty"`
	QAReviewedAt   *time.Time `json:"qa_reviewed_at,omitempty"`
	QAComments     string     `gorm:"type:text" json:"qa_comments,omitempty"`

	InvestigationTeamID string `gorm:"type:varchar(64)" json:"investigation_team_id,omitempty"`
	TeamAssignedBy      string `gorm:"type:varchar(64)" json:"team_assigned_by,omitempty"`
}

// 受影响对象的标记变体类型
// 源数据把 product/material/equipment 建成同级可选字段,这里收敛为带标签的变体
const (
	ItemTypeProduct   = "product"
	ItemTypeMaterial  = "material"
	ItemTypeEquipment = "equipment"
)

// AffectedItem 受影响对象(产品/物料/设备)
type AffectedItem struct {
	ItemType  string `gorm:"type:varchar(16)" json:"item_type,omitempty"` // product | material | equipment
	ItemName  string `gorm:"type:varchar(255)" json:"item_name,omitempty"`
	ItemBatch string `gorm:"type:varchar(64)" json:"item_batch,omitempty"` // 批号(产品/物料)
	ItemRefID string `gorm:"type:varchar(64)" json:"item_ref_id,omitempty"` // 设备变体引用 equipment 表
}

// Valid 校验变体标签与字段组合
func (a *AffectedItem) Valid() bool {
	switch a.ItemType {
	case "":
		return true
	case ItemTypeProduct, ItemTypeMaterial:
		return a.ItemName != ""
	case ItemTypeEquipment:
		return a.ItemRefID != ""
	}
	return false
}
