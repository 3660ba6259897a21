package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一成功响应体, code 为 0 表示成功
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse 统一错误响应体, code 与 HTTP 状态码一致
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// PaginatedResponse 分页响应体
type PaginatedResponse struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "success", Data: data})
}

// Error 返回错误响应, code 不在 4xx/5xx 范围时按 500 处理
func Error(c *gin.Context, code int, message string, detail string) {
	status := code
	if status < 400 || status >= 600 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{Code: code, Message: message, Detail: detail})
}

// Paginated 返回分页响应
func Paginated(c *gin.Context, data interface{}, pagination PaginationInfo) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Message:    "success",
		Data:       data,
		Pagination: pagination,
	})
}
