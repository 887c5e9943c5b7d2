package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/metrics"
	"github.com/protakeoff/marketplace/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultAuditCron = "@every 10m"

// Service 队列消费者与对账巡检调度器，随 app.Runner 启停
type Service struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewService 队列未启用时返回错误，由调用方决定是否跳过
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	switch {
	case cfg == nil || !cfg.Enabled:
		return nil, errors.New("queue disabled")
	case consumer == nil:
		return nil, errors.New("consumer is nil")
	}
	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	svc := &Service{
		server: asynq.NewServer(redisOpt, serverCfg),
		mux:    mux,
	}
	if consumer.ReconciliationService != nil {
		scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
		spec := strings.TrimSpace(cfg.AuditCron)
		if spec == "" {
			spec = defaultAuditCron
		}
		if _, err := scheduler.Register(spec, queue.NewReconciliationAuditTask(), asynq.Unique(time.Minute)); err != nil {
			return nil, err
		}
		svc.scheduler = scheduler
	}
	return svc, nil
}

func (s *Service) Name() string { return "worker" }

// Start 非阻塞启动消费者与调度器，随后等待 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			s.server.Shutdown()
			return err
		}
	}
	<-ctx.Done()
	return nil
}

// Stop 先停调度器，避免关闭过程中继续入队
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}

func (c *Consumer) handleReconciliationAudit(context.Context, *asynq.Task) error {
	c.auditReconciliations()
	return nil
}

// auditReconciliations 统计已扣款未落单记录并上报指标
func (c *Consumer) auditReconciliations() int64 {
	count, err := c.ReconciliationService.CountUnresolved()
	if err != nil {
		logger.Warnw("worker_reconciliation_audit_failed", "error", err)
		return 0
	}
	metrics.SetUnresolvedReconciliations(count)
	if count > 0 {
		logger.Warnw("worker_reconciliation_unresolved", "count", count)
	}
	return count
}
