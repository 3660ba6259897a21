package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/integration"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/metrics"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
)

// OverdueMonitor CAPA 超期监控
// 定期扫描超过到期日且未关闭的 CAPA,通知创建者并推送状态事件
type OverdueMonitor struct {
	capas    repository.CAPARepository
	users    repository.UserRepository
	mailer   integration.Mailer
	notifier Notifier
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}

	// 已通知的 CAPA,进程内去重,重启后重新通知可接受
	notified map[string]bool
}

// NewOverdueMonitor 创建 CAPA 超期监控
func NewOverdueMonitor(
	capas repository.CAPARepository,
	users repository.UserRepository,
	mailer integration.Mailer,
	notifier Notifier,
	logger *logrus.Logger,
	interval time.Duration,
) *OverdueMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OverdueMonitor{
		capas:    capas,
		users:    users,
		mailer:   mailer,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
		notified: make(map[string]bool),
	}
}

// Start 启动监控
func (m *OverdueMonitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Stop 停止监控
func (m *OverdueMonitor) Stop() {
	close(m.stopChan)
}

// run 定期扫描
func (m *OverdueMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// 启动时立即扫描一次
	m.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep 执行一次超期扫描(公开方法,用于测试)
func (m *OverdueMonitor) Sweep(ctx context.Context) {
	overdue, err := m.capas.FindOverdue(time.Now())
	if err != nil {
		m.logger.WithError(err).Error("failed to scan overdue CAPAs")
		return
	}

	metrics.SetOverdueCAPAs(float64(len(overdue)))

	for _, c := range overdue {
		if m.notified[c.ID] {
			continue
		}
		m.notify(c)
		m.notified[c.ID] = true
	}
}

// notify 通知 CAPA 创建者并推送状态事件
func (m *OverdueMonitor) notify(c *model.CAPAModel) {
	m.notifier.NotifyStatusChange("capa", c.ID, c.CAPANumber, "Overdue")

	if m.mailer == nil {
		return
	}
	creator, err := m.users.FindByID(c.CreatedBy)
	if err != nil {
		m.logger.WithError(err).WithField("capa", c.CAPANumber).Warn("overdue CAPA creator not found")
		return
	}

	due := ""
	if c.DueDate != nil {
		due = c.DueDate.Format("2006-01-02")
	}
	body := fmt.Sprintf("CAPA %s was due on %s and is not closed. Current status: %s.",
		c.CAPANumber, due, c.Status)
	if err := m.mailer.Send(creator.Email, fmt.Sprintf("CAPA %s is overdue", c.CAPANumber), body); err != nil {
		m.logger.WithError(err).WithField("capa", c.CAPANumber).Error("failed to send overdue notification")
	}
}
