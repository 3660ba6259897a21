package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// gin context 键
const (
	ContextUserID = "user_id"
	ContextActor  = "actor"
)

// AuthMiddleware 认证中间件
// 验证 Bearer 令牌后从数据库加载完整用户(含角色和部门),
// 组装 workflow.Actor 存入请求上下文
func AuthMiddleware(tokens *TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing authorization header",
			})
			c.Abort()
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := tokens.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "invalid token",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "user not found",
			})
			c.Abort()
			return
		}

		actor := workflow.Actor{
			UserID:       user.ID,
			DepartmentID: user.DepartmentID,
		}
		if user.Role != nil {
			actor.Role = user.Role.Name
		}
		if user.Department != nil {
			actor.QA = user.Department.Name == workflow.QADepartmentName
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextActor, actor)
		c.Next()
	}
}

// RequireRoles 角色闸门中间件
// 仅允许列出的角色访问,须在 AuthMiddleware 之后使用
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok || !allowed[actor.Role] {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "insufficient role",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFromContext 从 gin 上下文取出工作流操作者
func ActorFromContext(c *gin.Context) (workflow.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return workflow.Actor{}, false
	}
	actor, ok := v.(workflow.Actor)
	return actor, ok
}
