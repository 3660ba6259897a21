package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/config"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// Connect 连接数据库并按配置设置连接池。
// 连接池参数的环境相关默认值由配置层填充
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(BuildDSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}
	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	if err := db.AutoMigrate(
		&model.DepartmentModel{},
		&model.RoleModel{},
		&model.UserModel{},
		&model.PermissionModel{},
		&model.RolePermissionModel{},
		&model.LocationModel{},
		&model.EquipmentModel{},
		&model.QuestionModel{},
		&model.DeviationCategoryModel{},
		&model.ChangeCategoryModel{},
		&model.DeviationModel{},
		&model.CAPAModel{},
		&model.ChangeControlModel{},
		&model.InvestigationTeamModel{},
		&model.TeamMemberModel{},
		&model.ImpactAssessmentModel{},
		&model.ImpactAnswerModel{},
		&model.AttachmentModel{},
		&model.DocumentModel{},
		&model.DocumentVersionModel{},
		&model.DocumentReviewModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	// SQLite 不支持 jsonb,audit_logs 表手动创建（用 TEXT 替代）
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteAuditTable(db); err != nil {
			return fmt.Errorf("failed to create SQLite audit table: %w", err)
		}
	} else {
		if err := db.AutoMigrate(&model.AuditLogModel{}); err != nil {
			return fmt.Errorf("failed to auto migrate audit logs: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteAuditTable 为 SQLite 手动创建 audit_logs 表（使用 TEXT 替代 jsonb）
func createSQLiteAuditTable(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error
}

// CreateIndexes 创建数据库索引
// 模型标签未覆盖的组合索引在这里补充
func CreateIndexes(db *gorm.DB) error {
	// 工作流记录按部门 + 状态过滤
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_deviations_dept_status ON deviations(department_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_deviations_dept_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_capas_dept_status ON capas(department_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_capas_dept_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_change_controls_dept_status ON change_controls(department_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_change_controls_dept_status: %w", err)
	}

	// 超期扫描
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_capas_due_status ON capas(due_date, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_capas_due_status: %w", err)
	}

	// 文档版本按文档 + 状态查询(生效版本)
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_document_versions_doc_status ON document_versions(document_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_document_versions_doc_status: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_created_at: %w", err)
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

