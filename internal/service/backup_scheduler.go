package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// BackupScheduleConfig 定时备份配置
type BackupScheduleConfig struct {
	Enabled       bool          // 是否启用定时备份
	Interval      time.Duration // 备份间隔
	RetentionDays int           // 备份保留天数, 0 表示不清理
	Verify        bool          // 备份后校验文件完整性
}

// BackupScheduler 定时创建备份并清理过期文件
type BackupScheduler struct {
	backups *BackupService
	config  BackupScheduleConfig
	logger  *logrus.Logger
	stop    chan struct{}
}

// NewBackupScheduler 创建备份调度器
func NewBackupScheduler(backups *BackupService, config BackupScheduleConfig, logger *logrus.Logger) *BackupScheduler {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BackupScheduler{
		backups: backups,
		config:  config,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// Config 当前调度配置
func (s *BackupScheduler) Config() BackupScheduleConfig {
	return s.config
}

// Start 启动调度循环, 未启用时直接返回
func (s *BackupScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}
	go s.run(ctx)
	return nil
}

// Stop 停止调度
func (s *BackupScheduler) Stop() {
	close(s.stop)
}

func (s *BackupScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *BackupScheduler) runOnce(ctx context.Context) {
	info, err := s.backups.CreateBackup(ctx)
	if err != nil {
		s.logger.WithError(err).Error("scheduled backup failed")
		return
	}
	if s.config.Verify {
		if err := s.backups.VerifyBackup(info.Path); err != nil {
			s.logger.WithError(err).WithField("backup", info.Filename).
				Error("backup verification failed")
			return
		}
	}
	s.logger.WithField("backup", info.Filename).Info("scheduled backup created")

	s.CleanupOldBackups(ctx)
}

// CleanupOldBackups 删除超过保留期的备份
func (s *BackupScheduler) CleanupOldBackups(ctx context.Context) {
	if s.config.RetentionDays <= 0 {
		return
	}
	backups, err := s.backups.ListBackups(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list backups for cleanup")
		return
	}

	retention := time.Duration(s.config.RetentionDays) * 24 * time.Hour
	for _, backup := range backups {
		if time.Since(backup.CreatedAt) <= retention {
			continue
		}
		if err := s.backups.DeleteBackup(ctx, backup.Filename); err != nil {
			s.logger.WithError(err).WithField("backup", backup.Filename).
				Warn("failed to delete expired backup")
			continue
		}
		s.logger.WithField("backup", backup.Filename).Info("expired backup deleted")
	}
}
