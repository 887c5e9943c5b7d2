package service

import (
	"time"

	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
)

// ReconciliationService 扣款待对账记录处理
type ReconciliationService struct {
	repo repository.ReconciliationRepository
	now  func() time.Time
}

// NewReconciliationService 创建对账服务
func NewReconciliationService(repo repository.ReconciliationRepository) *ReconciliationService {
	return &ReconciliationService{repo: repo, now: time.Now}
}

// ListUnresolved 未处理记录
func (s *ReconciliationService) ListUnresolved(page, pageSize int) ([]models.CheckoutReconciliation, int64, error) {
	return s.repo.ListUnresolved(page, pageSize)
}

// CountUnresolved 未处理记录数量
func (s *ReconciliationService) CountUnresolved() (int64, error) {
	_, total, err := s.repo.ListUnresolved(1, 1)
	return total, err
}

// Resolve 标记记录已人工处理
func (s *ReconciliationService) Resolve(id uint, adminID uint) error {
	ok, err := s.repo.MarkResolved(id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrReconciliationNotFound
	}
	logger.Infow("reconciliation_resolved", "reconciliation_id", id, "admin_id", adminID)
	return nil
}
