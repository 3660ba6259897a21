package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// respondServiceError 把服务层错误映射为 HTTP 响应。
// service.Error 自带状态码, 其余错误按 500 处理
func respondServiceError(ctx *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		detail := ""
		if svcErr.Err != nil {
			detail = svcErr.Err.Error()
		}
		Error(ctx, svcErr.Status, svcErr.Message, detail)
		return
	}
	Error(ctx, http.StatusInternalServerError, "internal server error", err.Error())
}
