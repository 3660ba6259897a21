package service

// Notifier 状态变化通知接口
// websocket 包提供基于连接中心的实现,测试用 NopNotifier
type Notifier interface {
	NotifyStatusChange(recordType string, recordID string, refNumber string, status string)
}

// NopNotifier 空通知实现
type NopNotifier struct{}

// NotifyStatusChange 空实现
func (NopNotifier) NotifyStatusChange(recordType string, recordID string, refNumber string, status string) {
}
