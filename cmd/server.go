/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/api"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/config"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/container"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the EQMS API server.
The server will listen on the configured host and port,
and provide REST API interfaces for quality record management.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 配置文件热更新: 运行中仅动态调整日志级别
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				level, err := logrus.ParseLevel(newCfg.Log.Level)
				if err != nil {
					logger.WithError(err).Warn("ignoring invalid log level from config reload")
					return
				}
				logger.SetLevel(level)
				logger.Infof("log level updated to %s", newCfg.Log.Level)
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("failed to watch config file")
			} else {
				defer watcher.Stop()
			}
		}

		// 分布式追踪按配置启用
		if cfg.Tracing.Enabled {
			if err := api.InitTracing(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}

		// 2. 初始化容器
		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 3. 初始化控制器
		authController := api.NewAuthController(ctr.AuthService())
		directoryController := api.NewDirectoryController(ctr.DirectoryService())
		deviationController := api.NewDeviationController(ctr.DeviationService())
		capaController := api.NewCAPAController(ctr.CAPAService())
		changeControlController := api.NewChangeControlController(ctr.ChangeControlService())
		documentController := api.NewDocumentController(ctr.DocumentService(), ctr.TextGenerator())
		queryController := api.NewQueryController(ctr.QueryService(), ctr.AuditLogService())
		statisticsController := api.NewStatisticsController(ctr.StatisticsService())
		uploadController := api.NewUploadController(ctr.Storage())
		backupController := api.NewBackupController(ctr.BackupService())

		// 4. 设置路由
		router := api.SetupRoutes(&api.RouterConfig{
			DB:                  ctr.DB(),
			Hub:                 ctr.Hub(),
			Tokens:              ctr.Tokens(),
			Users:               ctr.Users(),
			AllowedOrigins:      cfg.CORS.AllowedOrigins,
			RateLimitRPS:        100,
			RateLimitBurst:      200,
			EnableTracing:       cfg.Tracing.Enabled,
			EnableHTTPSRedirect: config.IsProduction(cfg),
			StaticDir:           cfg.Storage.BaseDir,
			Auth:                authController,
			Directory:           directoryController,
			Deviation:           deviationController,
			CAPA:                capaController,
			ChangeControl:       changeControlController,
			Document:            documentController,
			Query:               queryController,
			Statistics:          statisticsController,
			Upload:              uploadController,
			Backup:              backupController,
		})

		// 5. 启动后台任务
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go ctr.Hub().Run()
		ctr.Collector().Start()
		ctr.OverdueMonitor().Start(ctx)
		if err := ctr.BackupScheduler().Start(ctx); err != nil {
			logger.WithError(err).Warn("failed to start backup scheduler")
		}

		// 6. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器（在 goroutine 中）
		go func() {
			logger.Infof("Server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("Failed to start server: %v", err)
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")
		cancel()

		// 优雅关闭
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Fatalf("Server forced to shutdown: %v", err)
		}
		if cfg.Tracing.Enabled {
			if err := api.ShutdownTracing(shutdownCtx); err != nil {
				logger.WithError(err).Warn("failed to shut down tracing")
			}
		}

		logger.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}

// LoadConfig 加载配置
func LoadConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}
