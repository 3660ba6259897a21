package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/integration"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/utils"
)

// RegisterInput 注册输入
type RegisterInput struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	RoleID       string `json:"role_id" binding:"required"`
	DepartmentID string `json:"department_id" binding:"required"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token string           `json:"token"`
	User  *model.UserModel `json:"user"`
}

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.UserModel, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	RequestOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string, code string, newPassword string) error
}

// authService 认证服务实现
type authService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	departments repository.DepartmentRepository
	tokens      *auth.TokenManager
	otp         *OTPCache
	mailer      integration.Mailer
	audit       AuditLogService
	logger      *logrus.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	departments repository.DepartmentRepository,
	tokens *auth.TokenManager,
	otp *OTPCache,
	mailer integration.Mailer,
	audit AuditLogService,
	logger *logrus.Logger,
) AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &authService{
		users:       users,
		roles:       roles,
		departments: departments,
		tokens:      tokens,
		otp:         otp,
		mailer:      mailer,
		audit:       audit,
		logger:      logger,
	}
}

// Register 注册用户
// 角色与部门须已存在,邮箱全局唯一
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.UserModel, error) {
	if _, err := s.roles.FindByID(in.RoleID); err != nil {
		return nil, wrapError(err, "role not found")
	}
	if _, err := s.departments.FindByID(in.DepartmentID); err != nil {
		return nil, wrapError(err, "department not found")
	}
	if _, err := s.users.FindByEmail(in.Email); err == nil {
		return nil, NewInvalid("email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapError(err, "failed to check email")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, NewInternal("failed to hash password", err)
	}

	user := &model.UserModel{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       in.RoleID,
		DepartmentID: in.DepartmentID,
	}
	if err := s.users.Save(user); err != nil {
		return nil, wrapError(err, "failed to create user")
	}

	_ = s.audit.RecordAction(ctx, user.ID, "register", "user", user.ID, map[string]string{"email": user.Email})
	return s.users.FindByID(user.ID)
}

// Login 校验凭据并签发 JWT
// 用户不存在和密码错误返回相同错误,不泄露账号是否存在
func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid email or password"}
		}
		return nil, wrapError(err, "failed to load user")
	}
	if !utils.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid email or password"}
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	token, err := s.tokens.Issue(user.ID, roleName)
	if err != nil {
		return nil, NewInternal("failed to issue token", err)
	}

	_ = s.audit.RecordAction(ctx, user.ID, "login", "user", user.ID, nil)
	return &LoginResult{Token: token, User: user}, nil
}

// RequestOTP 为邮箱签发一次性验证码并发送邮件
// 邮箱未注册时静默成功,不泄露账号是否存在
func (s *authService) RequestOTP(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return wrapError(err, "failed to load user")
	}

	code, err := s.otp.Issue(email)
	if err != nil {
		return NewInternal("failed to issue OTP", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	if err := s.mailer.Send(email, "Password Reset Verification Code", body); err != nil {
		s.logger.WithError(err).WithField("email", email).Error("failed to send OTP email")
		return NewInternal("failed to send verification email", err)
	}
	return nil
}

// ResetPassword 校验验证码并重置密码,验证码单次使用
func (s *authService) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	if len(newPassword) < 8 {
		return NewInvalid("password must be at least 8 characters")
	}
	if !s.otp.Verify(email, code) {
		return NewInvalid("verification code is invalid or expired")
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return wrapError(err, "user not found")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return NewInternal("failed to hash password", err)
	}
	user.PasswordHash = hash
	if err := s.users.Save(user); err != nil {
		return wrapError(err, "failed to update password")
	}

	_ = s.audit.RecordAction(ctx, user.ID, "reset_password", "user", user.ID, nil)
	return nil
}
