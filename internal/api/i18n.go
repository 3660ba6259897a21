package api

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// 客户端提示消息的多语言资源, 键按 模块.场景 组织。
// 记录正文不翻译, 只覆盖接口层的通用提示
var i18nMessages = map[string]map[string]string{
	"en": {
		"error.bad_request":    "bad request",
		"error.unauthorized":   "unauthorized",
		"error.forbidden":      "forbidden",
		"error.not_found":      "resource not found",
		"error.conflict":       "record status changed, please retry",
		"error.internal":       "internal server error",
		"record.submitted":     "record submitted for review",
		"record.approved":      "record approved",
		"record.rejected":      "record rejected and returned to draft",
		"record.closed":        "record closed",
	},
	"zh": {
		"error.bad_request":    "请求错误",
		"error.unauthorized":   "未授权",
		"error.forbidden":      "禁止访问",
		"error.not_found":      "资源未找到",
		"error.conflict":       "记录状态已变化, 请重试",
		"error.internal":       "服务器内部错误",
		"record.submitted":     "记录已提交审核",
		"record.approved":      "记录已批准",
		"record.rejected":      "记录已驳回, 退回草稿",
		"record.closed":        "记录已关闭",
	},
}

var i18nMu sync.RWMutex

// RegisterMessages 注册或覆盖某语言的提示消息
func RegisterMessages(lang string, messages map[string]string) {
	i18nMu.Lock()
	defer i18nMu.Unlock()
	existing, ok := i18nMessages[lang]
	if !ok {
		existing = make(map[string]string, len(messages))
		i18nMessages[lang] = existing
	}
	for key, msg := range messages {
		existing[key] = msg
	}
}

// I18nMiddleware 解析请求语言并存入上下文。
// 查询参数 lang 优先, 其次 Accept-Language, 默认英文
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := "en"
		if queryLang := c.Query("lang"); queryLang != "" {
			lang = normalizeLanguage(queryLang)
		} else if headerLang := c.GetHeader("Accept-Language"); headerLang != "" {
			first, _, _ := strings.Cut(headerLang, ",")
			first, _, _ = strings.Cut(first, ";")
			lang = normalizeLanguage(strings.TrimSpace(first))
		}
		c.Set("language", lang)
		c.Next()
	}
}

// GetLanguage 从上下文获取请求语言
func GetLanguage(c *gin.Context) string {
	if lang, ok := c.Get("language"); ok {
		if l, ok := lang.(string); ok {
			return l
		}
	}
	return "en"
}

// T 按请求语言翻译提示消息, 缺失时回落英文, 再缺失返回 key 本身
func T(c *gin.Context, key string) string {
	lang := GetLanguage(c)

	i18nMu.RLock()
	defer i18nMu.RUnlock()
	if msg, ok := i18nMessages[lang][key]; ok {
		return msg
	}
	if msg, ok := i18nMessages["en"][key]; ok {
		return msg
	}
	return key
}

// normalizeLanguage 把区域化语言代码归并到受支持的基础语言
func normalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	base, _, _ := strings.Cut(lang, "-")
	switch base {
	case "zh", "en":
		return base
	}
	return lang
}
