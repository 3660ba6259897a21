package integration

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSendFunc 实际发信函数,测试中可替换
var SMTPSendFunc = smtp.SendMail

// Mailer 邮件发送接口
// 调用方只关心 收件人/主题/正文 的简单契约
type Mailer interface {
	Send(to string, subject string, body string) error
}

// SMTPConfig SMTP 连接配置
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPMailer 基于 SMTP 的邮件发送实现
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer 创建 SMTP 邮件发送器
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = "EQMS"
	}
	return &SMTPMailer{cfg: cfg}
}

// Send 发送纯文本邮件
func (m *SMTPMailer) Send(to string, subject string, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	return SMTPSendFunc(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg.String()))
}
