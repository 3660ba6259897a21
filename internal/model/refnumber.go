package model

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// departmentPrefix 根据部门名称生成引用编号前缀
// 取名称前 3 个字母大写;与既有部门冲突时追加随机 3 位数字后缀
func departmentPrefix(tx *gorm.DB, name string) (string, error) {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 3 {
			break
		}
	}
	if len(letters) == 0 {
		return "", fmt.Errorf("department name %q contains no letters", name)
	}
	base := string(letters)

	var count int64
	if err := tx.Model(&DepartmentModel{}).Where("prefix = ?", base).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s%03d", base, rand.Intn(1000)), nil
}

// nextSequence 返回作用域内下一个序号(作用域内现有记录数 + 1)
func nextSequence(tx *gorm.DB, table string, scopeColumn string, scopeValue string) (int64, error) {
	var count int64
	err := tx.Table(table).Where(scopeColumn+" = ?", scopeValue).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// formatRef 格式化引用编号: {prefix}-{code}{NNN},序号补零到 3 位
func formatRef(prefix string, code string, seq int64) string {
	return fmt.Sprintf("%s-%s%03d", strings.ToUpper(prefix), code, seq)
}
