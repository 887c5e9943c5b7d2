package queue

import (
	"encoding/json"

	"github.com/protakeoff/marketplace/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderReceiptEmail 订单收据邮件任务
	TaskOrderReceiptEmail = constants.TaskOrderReceiptEmail
	// TaskContactNotification 联系表单通知任务
	TaskContactNotification = constants.TaskContactNotification
	// TaskContactConfirmation 给留言人的回执邮件任务
	TaskContactConfirmation = constants.TaskContactConfirmation
	// TaskReconciliationAudit 周期性对账巡检，无载荷
	TaskReconciliationAudit = constants.TaskReconciliationAudit
)

// OrderReceiptEmailPayload 订单收据邮件任务载荷
type OrderReceiptEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Locale  string `json:"locale,omitempty"`
}

// ContactNotificationPayload 联系表单通知任务载荷
type ContactNotificationPayload struct {
	MessageID uint `json:"message_id"`
}

// ContactConfirmationPayload 留言回执任务载荷
type ContactConfirmationPayload struct {
	MessageID uint   `json:"message_id"`
	Locale    string `json:"locale,omitempty"`
}

// NewOrderReceiptEmailTask 创建订单收据邮件任务
func NewOrderReceiptEmailTask(payload OrderReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderReceiptEmail, body), nil
}

// NewContactNotificationTask 创建联系表单通知任务
func NewContactNotificationTask(payload ContactNotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskContactNotification, body), nil
}

// NewContactConfirmationTask 创建留言回执任务
func NewContactConfirmationTask(payload ContactConfirmationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskContactConfirmation, body), nil
}

// NewReconciliationAuditTask 创建对账巡检任务，失败不重试，等下一周期
func NewReconciliationAuditTask() *asynq.Task {
	return asynq.NewTask(TaskReconciliationAudit, nil, asynq.Queue(DefaultQueue), asynq.MaxRetry(0))
}
