package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// APIVersion 当前对外 API 版本
const APIVersion = "v1"

// VersionMiddleware 解析请求的 API 版本并回写响应头。
// 版本取自 URL 路径 /api/{version}/, 请求头 API-Version 优先
func VersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := APIVersion

		if rest, ok := strings.CutPrefix(c.Request.URL.Path, "/api/"); ok {
			if seg, _, _ := strings.Cut(rest, "/"); strings.HasPrefix(seg, "v") {
				version = seg
			}
		}
		if header := c.GetHeader("API-Version"); header != "" {
			version = header
		}

		c.Set("api_version", version)
		c.Header("X-API-Version", version)
		c.Next()
	}
}

// GetAPIVersion 从上下文获取请求的 API 版本
func GetAPIVersion(c *gin.Context) string {
	if version, ok := c.Get("api_version"); ok {
		if v, ok := version.(string); ok {
			return v
		}
	}
	return APIVersion
}
