package queue

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列（留言通知）
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列（订单收据）
	CriticalQueue = constants.QueueCritical

	defaultMaxRetry    = 5
	defaultTaskTimeout = 2 * time.Minute
	// 同一订单的收据任务在保留期内只入队一次
	taskRetention = 24 * time.Hour
)

// Client 队列客户端；未启用时所有投递均为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderReceiptEmail 投递订单收据邮件任务，按订单去重
func (c *Client) EnqueueOrderReceiptEmail(payload OrderReceiptEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderReceiptEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, CriticalQueue, receiptTaskID(payload.OrderID), opts)
}

// EnqueueContactNotification 投递联系表单通知任务，按留言去重
func (c *Client) EnqueueContactNotification(payload ContactNotificationPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewContactNotificationTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, DefaultQueue, messageTaskID(TaskContactNotification, payload.MessageID), opts)
}

// EnqueueContactConfirmation 投递留言回执任务，按留言去重
func (c *Client) EnqueueContactConfirmation(payload ContactConfirmationPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewContactConfirmationTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, DefaultQueue, messageTaskID(TaskContactConfirmation, payload.MessageID), opts)
}

func (c *Client) enqueue(task *asynq.Task, queueName, taskID string, opts []asynq.Option) error {
	options := []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(defaultMaxRetry),
		asynq.Timeout(defaultTaskTimeout),
		asynq.Retention(taskRetention),
	}
	if taskID != "" {
		options = append(options, asynq.TaskID(taskID))
	}
	options = append(options, opts...)
	_, err := c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func receiptTaskID(orderID uint) string {
	if orderID == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", TaskOrderReceiptEmail, orderID)
}

func messageTaskID(taskType string, messageID uint) string {
	if messageID == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", taskType, messageID)
}

// BuildServerConfig 生成 worker 服务配置，收据队列优先
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: net.JoinHostPort("127.0.0.1", "6379")}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := 6379
	if cfg.Port > 0 {
		port = cfg.Port
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
