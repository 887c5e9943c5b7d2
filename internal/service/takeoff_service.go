package service

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
)

// TakeoffService 图纸商品服务（前台浏览与后台维护）
type TakeoffService struct {
	repo repository.TakeoffRepository
}

// NewTakeoffService 创建图纸商品服务
func NewTakeoffService(repo repository.TakeoffRepository) *TakeoffService {
	return &TakeoffService{repo: repo}
}

// TakeoffInput 创建/更新图纸输入
type TakeoffInput struct {
	Title        string
	Description  string
	Category     string
	Price        models.Money
	Files        []models.FileMeta
	Images       []string
	BlueprintURL string
	IsActive     *bool
}

func (in TakeoffInput) apply(takeoff *models.Takeoff) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 255 {
		return ErrTakeoffInvalid
	}
	if in.Price.Decimal.IsNegative() {
		return ErrTakeoffInvalid
	}
	takeoff.Title = title
	takeoff.Description = strings.TrimSpace(in.Description)
	takeoff.Category = strings.TrimSpace(in.Category)
	takeoff.Price = models.NewMoneyFromDecimal(in.Price.Decimal)
	takeoff.Files = models.FileManifest(in.Files)
	if takeoff.Files == nil {
		takeoff.Files = models.FileManifest{}
	}
	images := make(models.StringArray, 0, len(in.Images))
	for _, image := range in.Images {
		if trimmed := strings.TrimSpace(image); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	takeoff.Images = images
	takeoff.BlueprintURL = strings.TrimSpace(in.BlueprintURL)
	if in.IsActive != nil {
		takeoff.IsActive = *in.IsActive
	}
	return nil
}

// ListPublic 前台图纸列表（仅上架）
func (s *TakeoffService) ListPublic(filter repository.TakeoffListFilter) ([]models.Takeoff, int64, error) {
	filter.OnlyActive = true
	return s.repo.List(filter)
}

// GetPublic 前台图纸详情
func (s *TakeoffService) GetPublic(id uint) (*models.Takeoff, error) {
	takeoff, err := s.repo.GetActiveByID(id)
	if err != nil {
		return nil, err
	}
	if takeoff == nil {
		return nil, ErrTakeoffNotFound
	}
	return takeoff, nil
}

// ListCategories 前台分类列表
func (s *TakeoffService) ListCategories() ([]string, error) {
	return s.repo.ListCategories()
}

// ListAdmin 后台图纸列表（含下架）
func (s *TakeoffService) ListAdmin(filter repository.TakeoffListFilter) ([]models.Takeoff, int64, error) {
	filter.OnlyActive = false
	return s.repo.List(filter)
}

// Get 后台图纸详情
func (s *TakeoffService) Get(id uint) (*models.Takeoff, error) {
	takeoff, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if takeoff == nil {
		return nil, ErrTakeoffNotFound
	}
	return takeoff, nil
}

// Create 创建图纸
func (s *TakeoffService) Create(adminID uint, input TakeoffInput) (*models.Takeoff, error) {
	takeoff := &models.Takeoff{IsActive: true}
	if err := input.apply(takeoff); err != nil {
		return nil, err
	}
	if adminID > 0 {
		takeoff.CreatedBy = &adminID
	}
	active := takeoff.IsActive
	if err := s.repo.Create(takeoff); err != nil {
		return nil, err
	}
	// is_active 带默认值，false 需要二次写入
	if !active {
		takeoff.IsActive = false
		if err := s.repo.Update(takeoff); err != nil {
			return nil, err
		}
	}
	logger.Infow("takeoff_created", "takeoff_id", takeoff.ID, "admin_id", adminID, "price", takeoff.Price.String())
	return takeoff, nil
}

// Update 更新图纸，购买次数保持不变
func (s *TakeoffService) Update(id uint, input TakeoffInput) (*models.Takeoff, error) {
	takeoff, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := input.apply(takeoff); err != nil {
		return nil, err
	}
	if err := s.repo.Update(takeoff); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除图纸，历史订单快照不受影响
func (s *TakeoffService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Infow("takeoff_deleted", "takeoff_id", id)
	return nil
}
