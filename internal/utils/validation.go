package utils

import (
	"errors"
	"regexp"
)

var recordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateRecordID 校验路径参数里的记录 ID。
// ID 均为 UUID 或同构字符串, 超出该字符集的直接拒绝
func ValidateRecordID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if !recordIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}
	return nil
}
