package container

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/config"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/database"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/integration"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/metrics"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/websocket"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、仓储、服务与外部集成
type Container struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	users  repository.UserRepository

	hub     *websocket.Hub
	storage integration.ObjectStorage
	textgen integration.TextGenerator

	authService          service.AuthService
	directoryService     service.DirectoryService
	deviationService     service.DeviationService
	capaService          service.CAPAService
	changeControlService service.ChangeControlService
	documentService      service.DocumentService
	queryService         service.QueryService
	statisticsService    service.StatisticsService
	auditLogService      service.AuditLogService
	backupService        *service.BackupService

	backupScheduler *service.BackupScheduler
	overdueMonitor  *service.OverdueMonitor
	collector       *metrics.Collector
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 认证组件
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	otp := service.NewOTPCache(time.Duration(cfg.OTP.TTLMinutes) * time.Minute)

	// 3. 外部集成
	mailer := integration.NewSMTPMailer(integration.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		User:        cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.From,
		FromName:    "EQMS",
	})
	storage := integration.NewLocalObjectStorage(cfg.Storage.BaseDir, cfg.Storage.BaseURL)

	// 文本生成服务可选,endpoint 为空时禁用草稿接口
	var textgen integration.TextGenerator
	if cfg.TextGen.Endpoint != "" {
		textgen = integration.NewHTTPTextGenerator(cfg.TextGen.Endpoint, cfg.TextGen.Model)
	}

	// 4. WebSocket 推送
	hub := websocket.NewHub()
	notifier := websocket.NewHubNotifier(hub, logger)

	// 5. 仓储层
	departments := repository.NewDepartmentRepository(db)
	roles := repository.NewRoleRepository(db)
	users := repository.NewUserRepository(db)
	permissions := repository.NewPermissionRepository(db)
	catalog := repository.NewCatalogRepository(db)
	deviations := repository.NewDeviationRepository(db)
	capas := repository.NewCAPARepository(db)
	changeControls := repository.NewChangeControlRepository(db)
	teams := repository.NewTeamRepository(db)
	impacts := repository.NewImpactRepository(db)
	attachments := repository.NewAttachmentRepository(db)
	documents := repository.NewDocumentRepository(db)
	auditLogs := repository.NewAuditLogRepository(db)

	// 6. 服务层
	auditLogService := service.NewAuditLogService(auditLogs)
	authService := service.NewAuthService(users, roles, departments, tokens, otp, mailer, auditLogService, logger)
	directoryService := service.NewDirectoryService(departments, roles, users, permissions, catalog, auditLogService)
	deviationService := service.NewDeviationService(db, deviations, capas, teams, impacts, attachments, catalog, users, auditLogService, notifier)
	capaService := service.NewCAPAService(db, capas, deviations, changeControls, teams, attachments, users, auditLogService, notifier)
	changeControlService := service.NewChangeControlService(db, changeControls, teams, impacts, attachments, catalog, users, auditLogService, notifier)
	documentService := service.NewDocumentService(db, documents, auditLogService, notifier)
	queryService := service.NewQueryService(db)
	statisticsService := service.NewStatisticsService(db)

	// 7. 备份服务与调度
	backupService := service.NewBackupService(db, cfg.Backup.Dir)
	backupScheduler := service.NewBackupScheduler(backupService, service.BackupScheduleConfig{
		Enabled:       true,
		Interval:      24 * time.Hour,
		RetentionDays: cfg.Backup.RetentionDays,
		Verify:        true,
	}, logger)

	// 8. 后台任务
	overdueMonitor := service.NewOverdueMonitor(capas, users, mailer, notifier, logger, time.Hour)
	collector := metrics.NewCollector(db, 30*time.Second)

	return &Container{
		db:                   db,
		tokens:               tokens,
		users:                users,
		hub:                  hub,
		storage:              storage,
		textgen:              textgen,
		authService:          authService,
		directoryService:     directoryService,
		deviationService:     deviationService,
		capaService:          capaService,
		changeControlService: changeControlService,
		documentService:      documentService,
		queryService:         queryService,
		statisticsService:    statisticsService,
		auditLogService:      auditLogService,
		backupService:        backupService,
		backupScheduler:      backupScheduler,
		overdueMonitor:       overdueMonitor,
		collector:            collector,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Tokens 获取 JWT 管理器
func (c *Container) Tokens() *auth.TokenManager {
	return c.tokens
}

// Users 获取用户仓储,认证中间件装载用户角色与部门时使用
func (c *Container) Users() repository.UserRepository {
	return c.users
}

// Hub 获取 WebSocket 连接中心
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// Storage 获取附件对象存储
func (c *Container) Storage() integration.ObjectStorage {
	return c.storage
}

// TextGenerator 获取文本生成客户端,未配置时为 nil
func (c *Container) TextGenerator() integration.TextGenerator {
	return c.textgen
}

// AuthService 获取认证服务
func (c *Container) AuthService() service.AuthService {
	return c.authService
}

// DirectoryService 获取基础主数据服务
func (c *Container) DirectoryService() service.DirectoryService {
	return c.directoryService
}

// DeviationService 获取偏差记录服务
func (c *Container) DeviationService() service.DeviationService {
	return c.deviationService
}

// CAPAService 获取纠正预防措施服务
func (c *Container) CAPAService() service.CAPAService {
	return c.capaService
}

// ChangeControlService 获取变更控制服务
func (c *Container) ChangeControlService() service.ChangeControlService {
	return c.changeControlService
}

// DocumentService 获取受控文档服务
func (c *Container) DocumentService() service.DocumentService {
	return c.documentService
}

// QueryService 获取跨记录查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogService
}

// BackupService 获取备份服务
func (c *Container) BackupService() *service.BackupService {
	return c.backupService
}

// BackupScheduler 获取备份调度器
func (c *Container) BackupScheduler() *service.BackupScheduler {
	return c.backupScheduler
}

// OverdueMonitor 获取 CAPA 超期监控
func (c *Container) OverdueMonitor() *service.OverdueMonitor {
	return c.overdueMonitor
}

// Collector 获取指标采集器
func (c *Container) Collector() *metrics.Collector {
	return c.collector
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.overdueMonitor != nil {
		c.overdueMonitor.Stop()
	}
	if c.backupScheduler != nil {
		c.backupScheduler.Stop()
	}
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
