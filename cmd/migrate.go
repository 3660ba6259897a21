/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/config"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/database"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/utils"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to create or update the schema.

With --seed the command also creates the built-in roles, the
Quality Assurance department, and an initial admin account when
--admin-email and --admin-password are provided.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"host":   cfg.Database.Host,
			"port":   cfg.Database.Port,
			"dbname": cfg.Database.DBName,
		}).Info("connecting to database")
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logrus.Info("database migrations completed")

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			adminEmail, _ := cmd.Flags().GetString("admin-email")
			adminPassword, _ := cmd.Flags().GetString("admin-password")
			if err := seedBaseData(db, adminEmail, adminPassword); err != nil {
				return fmt.Errorf("failed to seed base data: %w", err)
			}
			logrus.Info("base data seeded")
		}
		return nil
	},
}

// seedBaseData 写入固定角色、QA 部门和可选的初始管理员
func seedBaseData(db *gorm.DB, adminEmail string, adminPassword string) error {
	roles := []struct {
		name string
		desc string
	}{
		{workflow.RoleCreator, "creates and submits quality records"},
		{workflow.RoleReviewer, "department head review"},
		{workflow.RoleApprover, "QA approval and closure"},
		{workflow.RoleAdmin, "directory and user administration"},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var adminRole model.RoleModel
		for _, r := range roles {
			role := model.RoleModel{Name: r.name, Description: r.desc}
			if err := tx.Where("name = ?", r.name).FirstOrCreate(&role).Error; err != nil {
				return err
			}
			if r.name == workflow.RoleAdmin {
				adminRole = role
			}
		}

		qa := model.DepartmentModel{Name: workflow.QADepartmentName}
		if err := tx.Where("name = ?", workflow.QADepartmentName).FirstOrCreate(&qa).Error; err != nil {
			return err
		}

		if adminEmail == "" || adminPassword == "" {
			return nil
		}
		var count int64
		if err := tx.Model(&model.UserModel{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		hash, err := utils.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		return tx.Create(&model.UserModel{
			Name:         "Administrator",
			Email:        adminEmail,
			PasswordHash: hash,
			RoleID:       adminRole.ID,
			DepartmentID: qa.ID,
		}).Error
	})
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.eqms-server)")
	migrateCmd.Flags().Bool("seed", false, "Seed built-in roles, the QA department and an initial admin")
	migrateCmd.Flags().String("admin-email", "", "Email for the initial admin account (requires --seed)")
	migrateCmd.Flags().String("admin-password", "", "Password for the initial admin account (requires --seed)")
}
