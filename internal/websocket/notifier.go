package websocket

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// StatusEvent 质量记录状态变化事件
type StatusEvent struct {
	Type       string    `json:"type"` // status_change
	RecordType string    `json:"record_type"`
	RecordID   string    `json:"record_id"`
	RefNumber  string    `json:"ref_number"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// HubNotifier 把状态变化事件广播到全部 WebSocket 连接
// 实现 service.Notifier
type HubNotifier struct {
	hub    *Hub
	logger *logrus.Logger
}

// NewHubNotifier 创建广播通知器
func NewHubNotifier(hub *Hub, logger *logrus.Logger) *HubNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HubNotifier{hub: hub, logger: logger}
}

// NotifyStatusChange 广播状态变化事件
// Broadcast 无缓冲,无在线连接时 Hub.Run 仍会消费;失败只记日志,不影响业务写入
func (n *HubNotifier) NotifyStatusChange(recordType string, recordID string, refNumber string, status string) {
	event := StatusEvent{
		Type:       "status_change",
		RecordType: recordType,
		RecordID:   recordID,
		RefNumber:  refNumber,
		Status:     status,
		Timestamp:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.WithError(err).Error("failed to marshal status event")
		return
	}

	select {
	case n.hub.Broadcast <- payload:
	default:
		// Hub 未运行时丢弃事件,通知是尽力而为
		n.logger.WithField("record", refNumber).Warn("dropped status event, hub not running")
	}
}
