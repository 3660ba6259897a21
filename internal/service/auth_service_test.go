package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/database"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// fakeMailer 记录发送的邮件,不真正发信
type fakeMailer struct {
	to      []string
	bodies  []string
	sendErr error
}

func (m *fakeMailer) Send(to string, subject string, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.to = append(m.to, to)
	m.bodies = append(m.bodies, body)
	return nil
}

// authTestEnv 认证服务测试环境
type authTestEnv struct {
	db      *gorm.DB
	service service.AuthService
	tokens  *auth.TokenManager
	otp     *service.OTPCache
	mailer  *fakeMailer
	role    *model.RoleModel
	dept    *model.DepartmentModel
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "eqms-test", time.Hour)
	require.NoError(t, err)
	otp := service.NewOTPCache(time.Minute)
	mailer := &fakeMailer{}

	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	departments := repository.NewDepartmentRepository(db)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))

	env := &authTestEnv{
		db:      db,
		service: service.NewAuthService(users, roles, departments, tokens, otp, mailer, audit, nil),
		tokens:  tokens,
		otp:     otp,
		mailer:  mailer,
	}

	env.role = &model.RoleModel{Name: workflow.RoleCreator}
	require.NoError(t, db.Create(env.role).Error)
	env.dept = &model.DepartmentModel{Name: "Production"}
	require.NoError(t, db.Create(env.dept).Error)
	return env
}

func (e *authTestEnv) register(t *testing.T, email string, password string) *model.UserModel {
	user, err := e.service.Register(context.Background(), service.RegisterInput{
		Name:         "Test User",
		Email:        email,
		Password:     password,
		RoleID:       e.role.ID,
		DepartmentID: e.dept.ID,
	})
	require.NoError(t, err)
	return user
}

// TestAuthService_RegisterAndLogin 测试注册登录与令牌签发
func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	user := env.register(t, "alice@eqms.local", "s3cret-pass")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	result, err := env.service.Login(ctx, service.LoginInput{Email: "alice@eqms.local", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	claims, err := env.tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, workflow.RoleCreator, claims.Role)

	// 密码错误与账号不存在返回相同错误
	var svcErr *service.Error
	_, err = env.service.Login(ctx, service.LoginInput{Email: "alice@eqms.local", Password: "wrong"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.Status)
	wrongPassMsg := svcErr.Message

	_, err = env.service.Login(ctx, service.LoginInput{Email: "nobody@eqms.local", Password: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.Status)
	assert.Equal(t, wrongPassMsg, svcErr.Message)
}

// TestAuthService_RegisterValidation 测试注册引用校验与邮箱唯一
func TestAuthService_RegisterValidation(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob@eqms.local", "password-1")

	var svcErr *service.Error

	// 邮箱重复
	_, err := env.service.Register(ctx, service.RegisterInput{
		Name: "B", Email: "bob@eqms.local", Password: "password-2",
		RoleID: env.role.ID, DepartmentID: env.dept.ID,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	// 角色不存在
	_, err = env.service.Register(ctx, service.RegisterInput{
		Name: "C", Email: "carol@eqms.local", Password: "password-3",
		RoleID: "missing", DepartmentID: env.dept.ID,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.Status)
}

// TestAuthService_PasswordReset 测试验证码重置密码
func TestAuthService_PasswordReset(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()
	env.register(t, "dave@eqms.local", "original-pass")

	require.NoError(t, env.service.RequestOTP(ctx, "dave@eqms.local"))
	require.Len(t, env.mailer.to, 1)
	assert.Equal(t, "dave@eqms.local", env.mailer.to[0])

	// 直接从缓存签发一个已知验证码,模拟用户读信
	code, err := env.otp.Issue("dave@eqms.local")
	require.NoError(t, err)

	// 错误验证码被拒
	var svcErr *service.Error
	err = env.service.ResetPassword(ctx, "dave@eqms.local", "000000", "brand-new-pass")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)

	require.NoError(t, env.service.ResetPassword(ctx, "dave@eqms.local", code, "brand-new-pass"))

	// 验证码单次使用
	err = env.service.ResetPassword(ctx, "dave@eqms.local", code, "another-pass")
	require.ErrorAs(t, err, &svcErr)

	// 新密码生效,旧密码失效
	_, err = env.service.Login(ctx, service.LoginInput{Email: "dave@eqms.local", Password: "brand-new-pass"})
	require.NoError(t, err)
	_, err = env.service.Login(ctx, service.LoginInput{Email: "dave@eqms.local", Password: "original-pass"})
	require.Error(t, err)
}

// TestAuthService_RequestOTPUnknownEmail 测试未注册邮箱静默成功
func TestAuthService_RequestOTPUnknownEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	require.NoError(t, env.service.RequestOTP(context.Background(), "ghost@eqms.local"))
	assert.Empty(t, env.mailer.to)
}

// TestOTPCache_ExpiryAndSingleUse 测试验证码过期与单次使用
func TestOTPCache_ExpiryAndSingleUse(t *testing.T) {
	cache := service.NewOTPCache(30 * time.Millisecond)

	code, err := cache.Issue("x@eqms.local")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.False(t, cache.Verify("x@eqms.local", "wrong"))
	assert.True(t, cache.Verify("x@eqms.local", code))
	// 命中后立即失效
	assert.False(t, cache.Verify("x@eqms.local", code))

	code, err = cache.Issue("x@eqms.local")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, cache.Verify("x@eqms.local", code))
	assert.Equal(t, 0, cache.Len())
}
