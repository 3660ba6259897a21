package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Collector 指标收集器
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)
			c.collectRecordStatuses()
			c.collectOverdueCAPAs()
		}
	}
}

type statusCount struct {
	Status string
	Count  int64
}

// collectRecordStatuses 按状态统计各类质量记录数
func (c *Collector) collectRecordStatuses() {
	tables := map[string]string{
		"deviation":      "deviations",
		"capa":           "capas",
		"change_control": "change_controls",
	}
	for recordType, table := range tables {
		var counts []statusCount
		if err := c.db.Table(table).
			Select("status, COUNT(*) as count").
			Group("status").
			Scan(&counts).Error; err != nil {
			continue
		}
		for _, sc := range counts {
			UpdateRecordsByStatus(recordType, sc.Status, float64(sc.Count))
		}
	}
}

// collectOverdueCAPAs 统计超期未关闭的 CAPA 数
func (c *Collector) collectOverdueCAPAs() {
	var count int64
	if err := c.db.Table("capas").
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", time.Now(), "Closed").
		Count(&count).Error; err != nil {
		return
	}
	SetOverdueCAPAs(float64(count))
}
