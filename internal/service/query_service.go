package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/utils"
)

// QueryService 跨记录查询服务接口
// 按引用编号跨 Deviation/CAPA/ChangeControl/Document 检索,
// 并提供带排序分页的单类记录列表
type QueryService interface {
	SearchByNumber(number string) (*SearchResult, error)
	ListRecords(filter *ListRecordsFilter) ([]map[string]interface{}, int64, error)
}

// SearchResult 编号检索结果
type SearchResult struct {
	Deviations     []*model.DeviationModel     `json:"deviations"`
	CAPAs          []*model.CAPAModel          `json:"capas"`
	ChangeControls []*model.ChangeControlModel `json:"change_controls"`
	Documents      []*model.DocumentModel      `json:"documents"`
}

// ListRecordsFilter 记录列表查询过滤器
type ListRecordsFilter struct {
	RecordType   string // deviation | capa | change_control
	Status       *string
	DepartmentID *string
	StartTime    *string
	EndTime      *string
	Page         int
	PageSize     int
	SortBy       string
	Order        string
}

// queryService 跨记录查询服务实现
type queryService struct {
	db *gorm.DB
}

// NewQueryService 创建跨记录查询服务
func NewQueryService(db *gorm.DB) QueryService {
	return &queryService{db: db}
}

// SearchByNumber 按引用编号前缀检索全部记录类型
func (s *queryService) SearchByNumber(number string) (*SearchResult, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, NewInvalid("search number is required")
	}
	pattern := number + "%"

	result := &SearchResult{}
	if err := s.db.Where("deviation_number LIKE ?", pattern).
		Order("deviation_number ASC").
		Find(&result.Deviations).Error; err != nil {
		return nil, fmt.Errorf("failed to search deviations: %w", err)
	}
	if err := s.db.Where("capa_number LIKE ?", pattern).
		Order("capa_number ASC").
		Find(&result.CAPAs).Error; err != nil {
		return nil, fmt.Errorf("failed to search CAPAs: %w", err)
	}
	if err := s.db.Where("change_number LIKE ?", pattern).
		Order("change_number ASC").
		Find(&result.ChangeControls).Error; err != nil {
		return nil, fmt.Errorf("failed to search change controls: %w", err)
	}
	if err := s.db.Where("document_number LIKE ?", pattern).
		Order("document_number ASC").
		Find(&result.Documents).Error; err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	return result, nil
}

// ListRecords 带排序分页的单类记录列表
// 排序字段和方向在拼接前校验,防止 SQL 注入
func (s *queryService) ListRecords(filter *ListRecordsFilter) ([]map[string]interface{}, int64, error) {
	var table string
	switch filter.RecordType {
	case "deviation":
		table = model.DeviationModel{}.TableName()
	case "capa":
		table = model.CAPAModel{}.TableName()
	case "change_control":
		table = model.ChangeControlModel{}.TableName()
	default:
		return nil, 0, NewInvalid("record type must be deviation, capa or change_control")
	}

	query := s.db.Table(table)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy); err != nil {
		return nil, 0, NewInvalid(fmt.Sprintf("invalid sort field: %v", err))
	}
	order := filter.Order
	if order == "" {
		order = "desc"
	}
	if err := utils.ValidateSortOrder(order); err != nil {
		return nil, 0, NewInvalid(fmt.Sprintf("invalid sort order: %v", err))
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, strings.ToUpper(order)))

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var rows []map[string]interface{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query records: %w", err)
	}

	return rows, total, nil
}
