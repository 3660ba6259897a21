package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// OTPCache 一次性验证码缓存
// 进程生命周期内有效,不持久化;重启丢失可接受,用户重新申请即可
type OTPCache struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	ttl     time.Duration
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// NewOTPCache 创建验证码缓存
func NewOTPCache(ttl time.Duration) *OTPCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPCache{
		entries: make(map[string]otpEntry),
		ttl:     ttl,
	}
}

// Issue 为邮箱生成 6 位验证码并写入缓存,覆盖旧码
func (c *OTPCache) Issue(email string) (string, error) {
	code, err := randomCode(6)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.entries[email] = otpEntry{code: code, expiresAt: time.Now().Add(c.ttl)}
	return code, nil
}

// Verify 校验验证码,命中后立即失效(单次使用)
func (c *OTPCache) Verify(email string, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[email]
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, email)
		return false
	}
	if entry.code != code {
		return false
	}
	delete(c.entries, email)
	return true
}

// Len 返回未过期条目数(用于测试)
func (c *OTPCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

// sweepLocked 清除过期条目,调用方须持锁
func (c *OTPCache) sweepLocked() {
	now := time.Now()
	for email, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, email)
		}
	}
}

// randomCode 生成 n 位数字验证码
func randomCode(n int) (string, error) {
	max := big.NewInt(10)
	code := make([]byte, n)
	for i := range code {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate OTP digit: %w", err)
		}
		code[i] = byte('0' + d.Int64())
	}
	return string(code), nil
}
