package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/websocket"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// RouterConfig 路由装配配置
type RouterConfig struct {
	DB     *gorm.DB
	Hub    *websocket.Hub
	Tokens *auth.TokenManager
	Users  repository.UserRepository

	AllowedOrigins      []string
	RateLimitRPS        float64
	RateLimitBurst      int
	EnableTracing       bool
	EnableHTTPSRedirect bool
	StaticDir           string // 本地对象存储目录,空则不暴露

	Auth          *AuthController
	Directory     *DirectoryController
	Deviation     *DeviationController
	CAPA          *CAPAController
	ChangeControl *ChangeControlController
	Document      *DocumentController
	Query         *QueryController
	Statistics    *StatisticsController
	Upload        *UploadController
	Backup        *BackupController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(HTTPSRedirectMiddleware(cfg.EnableHTTPSRedirect))
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(SecurityHeadersMiddleware())
	router.Use(VersionMiddleware())
	router.Use(I18nMiddleware())
	router.Use(SLAMonitorMiddleware(nil, nil))
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cfg.EnableTracing {
		router.Use(TracingMiddleware())
	}

	// 健康检查
	healthController := NewHealthController(cfg.DB)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// 本地对象存储静态访问
	if cfg.StaticDir != "" {
		router.Static("/uploads", cfg.StaticDir)
	}

	// WebSocket 状态推送
	if cfg.Hub != nil && cfg.Tokens != nil {
		router.GET("/ws", websocket.WebSocketHandler(cfg.Hub, cfg.Tokens))
	}

	// API v1 路由组
	v1 := router.Group("/api/v1")

	// 认证路由(匿名)
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", cfg.Auth.Login)
		authGroup.POST("/otp", cfg.Auth.RequestOTP)
		authGroup.POST("/reset-password", cfg.Auth.ResetPassword)
	}

	// 认证后路由
	authed := v1.Group("")
	authed.Use(auth.AuthMiddleware(cfg.Tokens, cfg.Users))

	// 用户注册仅管理员可用
	adminOnly := auth.RequireRoles(workflow.RoleAdmin)
	authed.POST("/auth/register", adminOnly, cfg.Auth.Register)

	// 组织目录
	{
		authed.POST("/departments", adminOnly, cfg.Directory.CreateDepartment)
		authed.GET("/departments", cfg.Directory.ListDepartments)
		authed.GET("/departments/:id", cfg.Directory.GetDepartment)

		authed.POST("/roles", adminOnly, cfg.Directory.CreateRole)
		authed.GET("/roles", cfg.Directory.ListRoles)
		authed.GET("/roles/:id/permissions", cfg.Directory.ListRolePermissions)
		authed.POST("/roles/:id/permissions/:permissionId", adminOnly, cfg.Directory.GrantPermission)
		authed.DELETE("/roles/:id/permissions/:permissionId", adminOnly, cfg.Directory.RevokePermission)

		authed.GET("/users", cfg.Directory.ListUsers)
		authed.GET("/users/:id", cfg.Directory.GetUser)

		authed.POST("/permissions", adminOnly, cfg.Directory.CreatePermission)
		authed.GET("/permissions", cfg.Directory.ListPermissions)
	}

	// 基础数据目录
	{
		authed.POST("/questions", adminOnly, cfg.Directory.CreateQuestion)
		authed.GET("/questions", cfg.Directory.ListQuestions)
		authed.DELETE("/questions/:id", adminOnly, cfg.Directory.DeleteQuestion)

		authed.POST("/locations", adminOnly, cfg.Directory.CreateLocation)
		authed.GET("/locations", cfg.Directory.ListLocations)
		authed.DELETE("/locations/:id", adminOnly, cfg.Directory.DeleteLocation)

		authed.POST("/equipment", adminOnly, cfg.Directory.CreateEquipment)
		authed.GET("/equipment", cfg.Directory.ListEquipment)
		authed.DELETE("/equipment/:id", adminOnly, cfg.Directory.DeleteEquipment)

		authed.POST("/deviation-categories", adminOnly, cfg.Directory.CreateDeviationCategory)
		authed.GET("/deviation-categories", cfg.Directory.ListDeviationCategories)
		authed.POST("/change-categories", adminOnly, cfg.Directory.CreateChangeCategory)
		authed.GET("/change-categories", cfg.Directory.ListChangeCategories)
	}

	// 偏差管理
	deviations := authed.Group("/deviations")
	{
		deviations.POST("", cfg.Deviation.Create)
		deviations.GET("", cfg.Deviation.List)
		deviations.GET("/:id", cfg.Deviation.Get)
		deviations.PUT("/:id", cfg.Deviation.Update)
		deviations.POST("/:id/submit", cfg.Deviation.Submit)
		deviations.POST("/:id/review", cfg.Deviation.Review)
		deviations.POST("/:id/qa-review", cfg.Deviation.QAReview)
		deviations.POST("/:id/team", cfg.Deviation.AssignTeam)
		deviations.POST("/:id/impact-assessment", cfg.Deviation.RecordImpact)
	}

	// CAPA 管理
	capas := authed.Group("/capas")
	{
		capas.POST("", cfg.CAPA.Create)
		capas.GET("", cfg.CAPA.List)
		capas.GET("/overdue", cfg.CAPA.ListOverdue)
		capas.GET("/:id", cfg.CAPA.Get)
		capas.POST("/:id/submit", cfg.CAPA.Submit)
		capas.POST("/:id/review", cfg.CAPA.Review)
		capas.POST("/:id/qa-review", cfg.CAPA.QAReview)
		capas.POST("/:id/team", cfg.CAPA.AssignTeam)
		capas.POST("/:id/investigation", cfg.CAPA.RecordInvestigation)
		capas.POST("/:id/immediate-actions", cfg.CAPA.StartImmediateActions)
		capas.POST("/:id/change-control", cfg.CAPA.InitiateChangeControl)
		capas.POST("/:id/close", cfg.CAPA.Close)
	}

	// 变更控制
	changeControls := authed.Group("/change-controls")
	{
		changeControls.POST("", cfg.ChangeControl.Create)
		changeControls.GET("", cfg.ChangeControl.List)
		changeControls.GET("/:id", cfg.ChangeControl.Get)
		changeControls.POST("/:id/submit", cfg.ChangeControl.Submit)
		changeControls.POST("/:id/review", cfg.ChangeControl.Review)
		changeControls.POST("/:id/qa-review", cfg.ChangeControl.QAReview)
		changeControls.POST("/:id/team", cfg.ChangeControl.AssignTeam)
		changeControls.POST("/:id/impact-assessment", cfg.ChangeControl.RecordImpact)
		changeControls.POST("/:id/historical-check", cfg.ChangeControl.RecordHistoricalCheck)
		changeControls.POST("/:id/acknowledge", cfg.ChangeControl.Acknowledge)
		changeControls.POST("/:id/close", cfg.ChangeControl.Close)
	}

	// 受控文档
	documents := authed.Group("/documents")
	{
		documents.POST("", cfg.Document.Create)
		documents.GET("", cfg.Document.List)
		documents.GET("/:id", cfg.Document.Get)
		documents.POST("/draft", cfg.Document.Draft)
		documents.POST("/:id/versions", cfg.Document.CreateVersion)
	}

	// 文档版本(gin 路由树不允许 :id 与静态段冲突,版本单独成组)
	versions := authed.Group("/document-versions")
	{
		versions.GET("/:versionId", cfg.Document.GetVersion)
		versions.POST("/:versionId/submit", cfg.Document.SubmitVersion)
		versions.POST("/:versionId/review", cfg.Document.ReviewVersion)
		versions.POST("/:versionId/approve", cfg.Document.ApproveVersion)
	}

	// 查询统计
	{
		authed.GET("/search", cfg.Query.Search)
		authed.GET("/records", cfg.Query.ListRecords)
		authed.GET("/audit/:resourceType/:id", cfg.Query.History)

		authed.GET("/statistics/by-status", cfg.Statistics.ByStatus)
		authed.GET("/statistics/by-department", cfg.Statistics.ByDepartment)
		authed.GET("/statistics/by-time", cfg.Statistics.ByTime)
		authed.GET("/statistics/overview", cfg.Statistics.Overview)
	}

	// 附件上传
	authed.POST("/uploads", cfg.Upload.Upload)

	// 备份管理(仅管理员)
	if cfg.Backup != nil {
		backups := authed.Group("/backups", adminOnly)
		{
			backups.POST("", cfg.Backup.CreateBackup)
			backups.GET("", cfg.Backup.ListBackups)
			backups.POST("/:filename/restore", cfg.Backup.RestoreBackup)
			backups.DELETE("/:filename", cfg.Backup.DeleteBackup)
		}
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
