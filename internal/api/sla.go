package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// SLAConfig 各类操作的响应时间目标
type SLAConfig struct {
	RecordCreationMaxTime time.Duration // 质量记录创建
	WorkflowActionMaxTime time.Duration // 工作流动作
	RecordQueryMaxTime    time.Duration // 记录查询
	DocumentQueryMaxTime  time.Duration // 文档查询
}

// DefaultSLAConfig 默认响应时间目标
func DefaultSLAConfig() *SLAConfig {
	return &SLAConfig{
		RecordCreationMaxTime: 1 * time.Second,
		WorkflowActionMaxTime: 2 * time.Second,
		RecordQueryMaxTime:    500 * time.Millisecond,
		DocumentQueryMaxTime:  500 * time.Millisecond,
	}
}

func (c *SLAConfig) limitFor(operation string) (time.Duration, bool) {
	switch operation {
	case "record_creation":
		return c.RecordCreationMaxTime, true
	case "workflow_action":
		return c.WorkflowActionMaxTime, true
	case "record_query":
		return c.RecordQueryMaxTime, true
	case "document_query":
		return c.DocumentQueryMaxTime, true
	}
	return 0, false
}

// 工作流动作路径后缀
var workflowActionSuffixes = []string{
	"/submit", "/review", "/qa-review", "/team",
	"/impact-assessment", "/investigation", "/immediate-actions",
	"/historical-check", "/acknowledge", "/close", "/approve",
}

// classifyOperation 按请求路径和方法归类操作
func classifyOperation(c *gin.Context) string {
	method := c.Request.Method
	path := c.Request.URL.Path

	if method == "POST" {
		for _, suffix := range workflowActionSuffixes {
			if strings.HasSuffix(path, suffix) {
				return "workflow_action"
			}
		}
	}
	if strings.Contains(path, "/documents") && method == "GET" {
		return "document_query"
	}
	switch path {
	case "/api/v1/deviations", "/api/v1/capas", "/api/v1/change-controls":
		if method == "POST" {
			return "record_creation"
		}
		if method == "GET" {
			return "record_query"
		}
	case "/api/v1/records", "/api/v1/search":
		return "record_query"
	}
	return "unknown"
}

// SLAViolation 一次超时记录
type SLAViolation struct {
	Operation string
	Duration  time.Duration
	Expected  time.Duration
	Timestamp time.Time
	Path      string
	Method    string
}

// SLAAlertManager 聚合超时记录, 达到阈值时触发回调
type SLAAlertManager struct {
	violations map[string][]SLAViolation
	thresholds map[string]int
	callbacks  []func(string, []SLAViolation)
	mu         sync.RWMutex
}

// NewSLAAlertManager 创建告警管理器
func NewSLAAlertManager() *SLAAlertManager {
	return &SLAAlertManager{
		violations: make(map[string][]SLAViolation),
		thresholds: make(map[string]int),
	}
}

// SetAlertThreshold 设置某操作的告警阈值
func (m *SLAAlertManager) SetAlertThreshold(operation string, threshold int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds[operation] = threshold
}

// OnAlert 注册告警回调
func (m *SLAAlertManager) OnAlert(callback func(string, []SLAViolation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// GetViolations 查询某操作的超时记录
func (m *SLAAlertManager) GetViolations(operation string) []SLAViolation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.violations[operation]
}

// RecordViolation 记录一次超时, 达到阈值时触发全部回调
func (m *SLAAlertManager) RecordViolation(operation string, violation SLAViolation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.violations[operation] = append(m.violations[operation], violation)
	threshold := m.thresholds[operation]
	if threshold > 0 && len(m.violations[operation]) >= threshold {
		for _, callback := range m.callbacks {
			callback(operation, m.violations[operation])
		}
	}
}

// SLAMonitorMiddleware 监控各类操作的响应时间。
// 超时请求带上 X-SLA-* 响应头; alerts 可为 nil, 仅标头不聚合
func SLAMonitorMiddleware(config *SLAConfig, alerts *SLAAlertManager) gin.HandlerFunc {
	if config == nil {
		config = DefaultSLAConfig()
	}

	return func(c *gin.Context) {
		start := time.Now()
		operation := classifyOperation(c)

		c.Next()

		limit, known := config.limitFor(operation)
		if !known {
			return
		}
		duration := time.Since(start)
		if duration <= limit {
			return
		}

		if alerts != nil {
			alerts.RecordViolation(operation, SLAViolation{
				Operation: operation,
				Duration:  duration,
				Expected:  limit,
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
				Method:    c.Request.Method,
			})
		}
		c.Header("X-SLA-Violation", "true")
		c.Header("X-SLA-Operation", operation)
		c.Header("X-SLA-Duration", duration.String())
		c.Header("X-SLA-Expected", limit.String())
	}
}
