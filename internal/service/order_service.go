package service

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
)

// OrderService 订单查询服务（订单落库后只读）
type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// TransactionBuyer 交易列表中的买家信息
type TransactionBuyer struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// Transaction 管理端交易记录
type Transaction struct {
	models.Order
	Buyer *TransactionBuyer `json:"buyer,omitempty"`
}

// ListMyOrders 查询当前用户订单，最新的在前
func (s *OrderService) ListMyOrders(email string, page, pageSize int) ([]models.Order, int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, 0, ErrInvalidRequest
	}
	return s.orderRepo.ListByUserEmail(email, page, pageSize)
}

// GetMyOrder 查询当前用户的单个订单，非本人订单视为不存在
func (s *OrderService) GetMyOrder(email string, id uint) (*models.Order, error) {
	if id == 0 || strings.TrimSpace(email) == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndEmail(id, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrder 管理端查询订单
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListTransactions 管理端交易列表，附带买家资料
func (s *OrderService) ListTransactions(filter repository.OrderListFilter) ([]Transaction, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, err
	}

	emails := make([]string, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserEmail]; ok {
			continue
		}
		seen[order.UserEmail] = struct{}{}
		emails = append(emails, order.UserEmail)
	}
	buyers := make(map[string]*TransactionBuyer, len(emails))
	if s.userRepo != nil && len(emails) > 0 {
		users, err := s.userRepo.ListByEmails(emails)
		if err != nil {
			return nil, 0, err
		}
		for _, user := range users {
			buyers[strings.ToLower(user.Email)] = &TransactionBuyer{
				UserID:    user.ID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Company:   user.Company,
				Phone:     user.Phone,
			}
		}
	}

	items := make([]Transaction, 0, len(orders))
	for _, order := range orders {
		items = append(items, Transaction{
			Order: order,
			Buyer: buyers[strings.ToLower(order.UserEmail)],
		})
	}
	return items, total, nil
}
