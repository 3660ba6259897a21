package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetRecordStatisticsByStatus() ([]*RecordStatisticsByStatus, error)
	GetDeviationStatisticsByDepartment() ([]*RecordStatisticsByDepartment, error)
	GetRecordStatisticsByTime() ([]*RecordStatisticsByTime, error)
	GetQualityOverview() (*QualityOverview, error)
}

// RecordStatisticsByStatus 按记录类型和状态统计
type RecordStatisticsByStatus struct {
	RecordType string `json:"record_type"`
	Status     string `json:"status"`
	Count      int64  `json:"count"`
}

// RecordStatisticsByDepartment 按部门统计
type RecordStatisticsByDepartment struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Count          int64  `json:"count"`
}

// RecordStatisticsByTime 按日期统计新建记录数
type RecordStatisticsByTime struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// QualityOverview 质量记录总览
type QualityOverview struct {
	TotalDeviations      int64   `json:"total_deviations"`
	TotalCAPAs           int64   `json:"total_capas"`
	TotalChangeControls  int64   `json:"total_change_controls"`
	OpenDeviations       int64   `json:"open_deviations"`
	OverdueCAPAs         int64   `json:"overdue_capas"`
	ClosedCAPAs          int64   `json:"closed_capas"`
	CAPAClosureRate      float64 `json:"capa_closure_rate"` // 百分比
	ClosedChangeControls int64   `json:"closed_change_controls"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetRecordStatisticsByStatus 按状态统计三类质量记录
func (s *statisticsService) GetRecordStatisticsByStatus() ([]*RecordStatisticsByStatus, error) {
	type modelRef struct {
		recordType string
		model      interface{}
	}
	refs := []modelRef{
		{"deviation", &model.DeviationModel{}},
		{"capa", &model.CAPAModel{}},
		{"change_control", &model.ChangeControlModel{}},
	}

	var stats []*RecordStatisticsByStatus
	for _, ref := range refs {
		var results []struct {
			Status string
			Count  int64
		}
		err := s.db.Model(ref.model).
			Select("status, COUNT(*) as count").
			Group("status").
			Scan(&results).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get %s statistics by status: %w", ref.recordType, err)
		}
		for _, r := range results {
			stats = append(stats, &RecordStatisticsByStatus{
				RecordType: ref.recordType,
				Status:     r.Status,
				Count:      r.Count,
			})
		}
	}

	return stats, nil
}

// GetDeviationStatisticsByDepartment 按部门统计偏差
func (s *statisticsService) GetDeviationStatisticsByDepartment() ([]*RecordStatisticsByDepartment, error) {
	var results []struct {
		DepartmentID string
		Count        int64
	}

	err := s.db.Model(&model.DeviationModel{}).
		Select("department_id, COUNT(*) as count").
		Group("department_id").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get deviation statistics by department: %w", err)
	}

	stats := make([]*RecordStatisticsByDepartment, 0, len(results))
	for _, r := range results {
		name := ""
		var dept model.DepartmentModel
		if err := s.db.Where("id = ?", r.DepartmentID).First(&dept).Error; err == nil {
			name = dept.Name
		}
		stats = append(stats, &RecordStatisticsByDepartment{
			DepartmentID:   r.DepartmentID,
			DepartmentName: name,
			Count:          r.Count,
		})
	}

	return stats, nil
}

// GetRecordStatisticsByTime 按日期统计新建偏差数
func (s *statisticsService) GetRecordStatisticsByTime() ([]*RecordStatisticsByTime, error) {
	var results []struct {
		Date  string
		Count int64
	}

	err := s.db.Model(&model.DeviationModel{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get record statistics by time: %w", err)
	}

	stats := make([]*RecordStatisticsByTime, 0, len(results))
	for _, r := range results {
		stats = append(stats, &RecordStatisticsByTime{
			Date:  r.Date,
			Count: r.Count,
		})
	}

	return stats, nil
}

// GetQualityOverview 质量记录总览
func (s *statisticsService) GetQualityOverview() (*QualityOverview, error) {
	overview := &QualityOverview{}

	if err := s.db.Model(&model.DeviationModel{}).Count(&overview.TotalDeviations).Error; err != nil {
		return nil, fmt.Errorf("failed to count deviations: %w", err)
	}
	if err := s.db.Model(&model.CAPAModel{}).Count(&overview.TotalCAPAs).Error; err != nil {
		return nil, fmt.Errorf("failed to count CAPAs: %w", err)
	}
	if err := s.db.Model(&model.ChangeControlModel{}).Count(&overview.TotalChangeControls).Error; err != nil {
		return nil, fmt.Errorf("failed to count change controls: %w", err)
	}

	closed := string(workflow.StatusClosed)
	if err := s.db.Model(&model.DeviationModel{}).
		Where("status NOT IN ?", []string{closed, string(workflow.StatusCAPAInitiated)}).
		Count(&overview.OpenDeviations).Error; err != nil {
		return nil, fmt.Errorf("failed to count open deviations: %w", err)
	}
	if err := s.db.Model(&model.CAPAModel{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", time.Now(), closed).
		Count(&overview.OverdueCAPAs).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue CAPAs: %w", err)
	}
	if err := s.db.Model(&model.CAPAModel{}).
		Where("status = ?", closed).
		Count(&overview.ClosedCAPAs).Error; err != nil {
		return nil, fmt.Errorf("failed to count closed CAPAs: %w", err)
	}
	if err := s.db.Model(&model.ChangeControlModel{}).
		Where("status = ?", closed).
		Count(&overview.ClosedChangeControls).Error; err != nil {
		return nil, fmt.Errorf("failed to count closed change controls: %w", err)
	}

	if overview.TotalCAPAs > 0 {
		overview.CAPAClosureRate = float64(overview.ClosedCAPAs) / float64(overview.TotalCAPAs) * 100
	}

	return overview, nil
}
