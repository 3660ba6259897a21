package service

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BackupService 把数据库导出为 gzip 压缩的 SQL 转储文件。
// 支持 postgres 与 sqlite 两种方言, 恢复时直接回放转储内容
type BackupService struct {
	db        *gorm.DB
	backupDir string
}

// BackupInfo 备份文件信息
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBackupService 创建备份服务, 目录不存在时自动创建
func NewBackupService(db *gorm.DB, backupDir string) *BackupService {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		backupDir = os.TempDir()
	}
	return &BackupService{db: db, backupDir: backupDir}
}

// BackupDir 备份目录
func (s *BackupService) BackupDir() string {
	return s.backupDir
}

// CreateBackup 创建一个新的备份文件并返回其信息
func (s *BackupService) CreateBackup(ctx context.Context) (*BackupInfo, error) {
	dialect := s.db.Dialector.Name()
	filename := fmt.Sprintf("backup_%s_%s.sql.gz", dialect, time.Now().Format("20060102_150405"))
	path := filepath.Join(s.backupDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if err := s.dump(ctx, gz); err != nil {
		gz.Close()
		os.Remove(path)
		return nil, err
	}
	if err := gz.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to finish backup: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}
	return &BackupInfo{
		Filename:  filename,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// dump 把所有业务表的结构和数据写成 SQL 语句
func (s *BackupService) dump(ctx context.Context, w io.Writer) error {
	tables, err := s.tableNames()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "-- dump created at %s\n\n", time.Now().Format(time.RFC3339))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.dumpTable(w, table); err != nil {
			return fmt.Errorf("failed to dump table %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) tableNames() ([]string, error) {
	var tables []string
	var err error
	switch s.db.Dialector.Name() {
	case "postgres":
		err = s.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error
	case "sqlite", "sqlite3":
		err = s.db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&tables).Error
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", s.db.Dialector.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *BackupService) dumpTable(w io.Writer, table string) error {
	fmt.Fprintf(w, "-- table: %s\n", table)

	rows, err := s.db.Table(table).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n",
			table, strings.Join(columns, ", "), strings.Join(literals, ", "))
	}
	fmt.Fprintln(w)
	return rows.Err()
}

// sqlLiteral 把扫描出来的值转成 SQL 字面量
func sqlLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case time.Time:
		return "'" + val.UTC().Format("2006-01-02 15:04:05.999999") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", val), "'", "''") + "'"
	}
}

// RestoreBackup 回放备份文件中的 SQL 语句
func (s *BackupService) RestoreBackup(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to read compressed backup: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for scanner.Scan() {
			stmt := strings.TrimSpace(scanner.Text())
			if stmt == "" || strings.HasPrefix(stmt, "--") {
				continue
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to replay statement: %w", err)
			}
		}
		return scanner.Err()
	})
}

// VerifyBackup 校验备份文件可以完整解压
func (s *BackupService) VerifyBackup(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("backup file is not a valid gzip archive: %w", err)
	}
	defer gz.Close()

	if _, err := io.Copy(io.Discard, gz); err != nil {
		return fmt.Errorf("backup file is corrupted: %w", err)
	}
	return nil
}

// ListBackups 按创建时间列出备份目录下的所有备份文件
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return backups, nil
}

// DeleteBackup 删除指定备份, 拒绝逃出备份目录的文件名
func (s *BackupService) DeleteBackup(ctx context.Context, filename string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("invalid backup filename: %s", filename)
	}
	if err := os.Remove(filepath.Join(s.backupDir, filename)); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}
