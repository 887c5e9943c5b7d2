package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/metrics"
	"github.com/protakeoff/marketplace/internal/provider"
	"github.com/protakeoff/marketplace/internal/queue"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/hibiken/asynq"
)

const (
	emailKindReceipt = "receipt"
	emailKindContact = "contact"
	emailKindConfirm = "contact_confirm"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderReceiptEmail, c.handleOrderReceiptEmail)
	mux.HandleFunc(queue.TaskContactNotification, c.handleContactNotification)
	mux.HandleFunc(queue.TaskContactConfirmation, c.handleContactConfirmation)
	if c.ReconciliationService != nil {
		mux.HandleFunc(queue.TaskReconciliationAudit, c.handleReconciliationAudit)
	}
}

func (c *Consumer) handleOrderReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_receipt_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if !c.EmailService.Enabled() {
		logger.Debugw("worker_receipt_email_skip_email_disabled", "order_id", payload.OrderID)
		metrics.ObserveEmail(emailKindReceipt, metrics.EmailSkipped)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_receipt_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_receipt_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if err := c.EmailService.SendOrderReceipt(order, payload.Locale); err != nil {
		metrics.ObserveEmail(emailKindReceipt, metrics.EmailFailed)
		logger.Warnw("worker_receipt_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", order.UserEmail,
			"error", err,
		)
		return wrapEmailError(err)
	}
	metrics.ObserveEmail(emailKindReceipt, metrics.EmailSent)
	logger.Infow("worker_receipt_email_sent", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func (c *Consumer) handleContactNotification(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_contact_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ContactNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_contact_notify_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.MessageID == 0 {
		logger.Debugw("worker_contact_notify_skip_invalid_payload", "message_id", payload.MessageID)
		return nil
	}
	if !c.EmailService.Enabled() {
		logger.Debugw("worker_contact_notify_skip_email_disabled", "message_id", payload.MessageID)
		metrics.ObserveEmail(emailKindContact, metrics.EmailSkipped)
		return nil
	}
	msg, err := c.ContactMessageRepo.GetByID(payload.MessageID)
	if err != nil {
		logger.Warnw("worker_contact_notify_fetch_failed", "message_id", payload.MessageID, "error", err)
		return err
	}
	if msg == nil {
		logger.Debugw("worker_contact_notify_skip_not_found", "message_id", payload.MessageID)
		return nil
	}
	recipients, err := c.contactRecipients()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Warnw("worker_contact_notify_skip_no_recipient", "message_id", msg.ID)
		metrics.ObserveEmail(emailKindContact, metrics.EmailSkipped)
		return nil
	}
	var sendErr error
	for _, to := range recipients {
		if err := c.EmailService.SendContactNotification(to, msg); err != nil {
			metrics.ObserveEmail(emailKindContact, metrics.EmailFailed)
			logger.Warnw("worker_contact_notify_send_failed", "message_id", msg.ID, "receiver_email", to, "error", err)
			sendErr = errors.Join(sendErr, err)
			continue
		}
		metrics.ObserveEmail(emailKindContact, metrics.EmailSent)
	}
	if sendErr != nil {
		return wrapEmailError(sendErr)
	}
	return nil
}

func (c *Consumer) handleContactConfirmation(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_contact_confirm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ContactConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_contact_confirm_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.MessageID == 0 {
		logger.Debugw("worker_contact_confirm_skip_invalid_payload", "message_id", payload.MessageID)
		return nil
	}
	if !c.EmailService.Enabled() {
		logger.Debugw("worker_contact_confirm_skip_email_disabled", "message_id", payload.MessageID)
		metrics.ObserveEmail(emailKindConfirm, metrics.EmailSkipped)
		return nil
	}
	msg, err := c.ContactMessageRepo.GetByID(payload.MessageID)
	if err != nil {
		logger.Warnw("worker_contact_confirm_fetch_failed", "message_id", payload.MessageID, "error", err)
		return err
	}
	if msg == nil {
		logger.Debugw("worker_contact_confirm_skip_not_found", "message_id", payload.MessageID)
		return nil
	}
	if err := c.EmailService.SendContactConfirmation(msg, payload.Locale); err != nil {
		metrics.ObserveEmail(emailKindConfirm, metrics.EmailFailed)
		logger.Warnw("worker_contact_confirm_send_failed", "message_id", msg.ID, "receiver_email", msg.Email, "error", err)
		return wrapEmailError(err)
	}
	metrics.ObserveEmail(emailKindConfirm, metrics.EmailSent)
	return nil
}

// contactRecipients 优先配置的通知邮箱，其次后台员工邮箱
func (c *Consumer) contactRecipients() ([]string, error) {
	if c.Config != nil {
		if configured := strings.TrimSpace(c.Config.Contact.NotifyEmail); configured != "" {
			return splitEmails(configured), nil
		}
	}
	if c.AdminRepo == nil {
		return nil, nil
	}
	emails, err := c.AdminRepo.ListNotifyEmails()
	if err != nil {
		logger.Warnw("worker_contact_notify_list_admin_emails_failed", "error", err)
		return nil, err
	}
	return emails, nil
}

func splitEmails(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// wrapEmailError 收件人被拒或地址无效时不再重试
func wrapEmailError(err error) error {
	if errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}
