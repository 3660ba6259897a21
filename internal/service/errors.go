package service

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// Error 服务层错误
// Status 对应 HTTP 状态码,控制器按此映射响应
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalid 400 校验错误
func NewInvalid(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// NewForbidden 403 授权错误
func NewForbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NewNotFound 404 引用对象不存在
func NewNotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// NewInternal 500 内部错误,底层消息透出给调用方
func NewInternal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// wrapError 把底层错误归入错误分类
// 状态机错误 -> 400,授权错误 -> 403,记录不存在 -> 404,
// 状态前置条件失败(并发转移竞争) -> 400,其余 -> 500
func wrapError(err error, fallback string) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	var stateErr *workflow.StateError
	if errors.As(err, &stateErr) {
		return &Error{Status: http.StatusBadRequest, Message: stateErr.Error()}
	}
	var authErr *workflow.AuthError
	if errors.As(err, &authErr) {
		return &Error{Status: http.StatusForbidden, Message: authErr.Error()}
	}
	if errors.Is(err, repository.ErrStatusConflict) {
		return &Error{Status: http.StatusBadRequest, Message: "record status changed, re-read and retry"}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Status: http.StatusNotFound, Message: fallback, Err: err}
	}
	return NewInternal(fallback, err)
}
