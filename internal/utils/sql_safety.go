package utils

import (
	"errors"
	"fmt"
	"strings"
)

// 允许用于 ORDER BY 的列, 三类质量记录表的公共列
var sortableColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"department_id": true,
}

// ValidateSortField 校验排序列是否在白名单内。
// 排序列会被拼进 SQL, 不能走占位符, 只能白名单
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}
	if !sortableColumns[strings.ToLower(field)] {
		return fmt.Errorf("field %q is not sortable", field)
	}
	return nil
}

// ValidateSortOrder 校验排序方向
func ValidateSortOrder(order string) error {
	switch strings.ToUpper(strings.TrimSpace(order)) {
	case "ASC", "DESC":
		return nil
	}
	return errors.New("sort order must be ASC or DESC")
}
