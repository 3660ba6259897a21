package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController 存活与就绪检查
type HealthController struct {
	db      *gorm.DB
	started time.Time
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db, started: time.Now()}
}

// Check 返回服务与数据库的健康状态, 数据库不可达时报 503
func (c *HealthController) Check(ctx *gin.Context) {
	checks := gin.H{"database": "healthy"}
	status := http.StatusOK

	if err := c.pingDatabase(ctx.Request.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(c.started).Seconds()),
		"timestamp":      time.Now().Unix(),
		"checks":         checks,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	ctx.JSON(status, body)
}

func (c *HealthController) pingDatabase(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
