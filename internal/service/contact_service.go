package service

import (
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/queue"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/hibiken/asynq"
)

// ContactQueue 联系留言通知投递接口
type ContactQueue interface {
	EnqueueContactNotification(payload queue.ContactNotificationPayload, opts ...asynq.Option) error
	EnqueueContactConfirmation(payload queue.ContactConfirmationPayload, opts ...asynq.Option) error
}

// ContactService 联系表单服务
type ContactService struct {
	repo  repository.ContactMessageRepository
	queue ContactQueue
	now   func() time.Time
}

// NewContactService 创建联系表单服务
func NewContactService(repo repository.ContactMessageRepository, queue ContactQueue) *ContactService {
	return &ContactService{repo: repo, queue: queue, now: time.Now}
}

// ContactInput 联系表单输入
type ContactInput struct {
	Name     string
	Email    string
	Company  string
	Phone    string
	Subject  string
	Message  string
	ClientIP string
	Locale   string
}

// ContactStats 后台留言统计
type ContactStats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByStatus map[string]int64 `json:"by_status"`
}

// Submit 保存留言，异步通知运营并给留言人发回执，投递失败不影响提交结果
func (s *ContactService) Submit(input ContactInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	message := strings.TrimSpace(input.Message)
	company := strings.TrimSpace(input.Company)
	if name == "" || message == "" || len(name) > 120 || len(message) > 5000 || len(company) > 255 {
		return nil, ErrContactInvalid
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrContactInvalid
	}

	now := s.now()
	record := &models.ContactMessage{
		Name:      name,
		Email:     email,
		Company:   company,
		Phone:     strings.TrimSpace(input.Phone),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   message,
		Status:    constants.ContactStatusNew,
		ClientIP:  strings.TrimSpace(input.ClientIP),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.EnqueueContactNotification(queue.ContactNotificationPayload{MessageID: record.ID}); err != nil {
			logger.Warnw("contact_notification_enqueue_failed", "message_id", record.ID, "error", err)
		}
		confirmation := queue.ContactConfirmationPayload{MessageID: record.ID, Locale: input.Locale}
		if err := s.queue.EnqueueContactConfirmation(confirmation); err != nil {
			logger.Warnw("contact_confirmation_enqueue_failed", "message_id", record.ID, "error", err)
		}
	}
	return record, nil
}

// Get 获取留言
func (s *ContactService) Get(id uint) (*models.ContactMessage, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrContactNotFound
	}
	return record, nil
}

// List 后台留言列表
func (s *ContactService) List(filter repository.ContactMessageListFilter) ([]models.ContactMessage, int64, error) {
	return s.repo.List(filter)
}

// UpdateStatus 更新留言处理状态
func (s *ContactService) UpdateStatus(id uint, status string) (*models.ContactMessage, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case constants.ContactStatusNew, constants.ContactStatusRead, constants.ContactStatusReplied, constants.ContactStatusArchived:
	default:
		return nil, ErrInvalidRequest
	}
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除留言
func (s *ContactService) Delete(id uint) error {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrContactNotFound
	}
	return nil
}

// Stats 留言统计，今日按服务器本地零点起算，未出现的状态补 0
func (s *ContactService) Stats() (*ContactStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	raw, err := s.repo.Stats(midnight)
	if err != nil {
		return nil, err
	}
	stats := &ContactStats{Total: raw.Total, Today: raw.Today, ByStatus: make(map[string]int64, len(constants.ContactStatuses))}
	for _, status := range constants.ContactStatuses {
		stats.ByStatus[status] = 0
	}
	for status, count := range raw.ByStatus {
		stats.ByStatus[status] = count
	}
	return stats, nil
}
