package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// AuthController 认证控制器
type AuthController struct {
	authService service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register 注册用户
// @Summary      注册用户
// @Description  创建新用户,角色和部门必须已存在
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.RegisterInput true "注册信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Login 登录
// @Summary      登录
// @Description  邮箱密码登录,返回 JWT 令牌
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.LoginInput true "登录信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, result)
}

// RequestOTP 请求密码重置验证码
// @Summary      请求密码重置验证码
// @Description  发送一次性验证码到邮箱;邮箱不存在时同样返回成功
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body object{email=string} true "邮箱"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/otp [post]
func (c *AuthController) RequestOTP(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.authService.RequestOTP(ctx.Request.Context(), req.Email); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// ResetPassword 重置密码
// @Summary      重置密码
// @Description  使用邮箱验证码重置密码,验证码一次性有效
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body object{email=string,code=string,new_password=string} true "重置信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/reset-password [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
