package service

import (
	"errors"
	"testing"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
)

func seedOrder(t *testing.T, repo *repository.GormOrderRepository, orderNo, email string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:            orderNo,
		UserEmail:          email,
		UserName:           "Buyer",
		Items:              models.OrderItems{{TakeoffID: 1, Title: "plan", Price: models.MustMoney("10"), Quantity: 1}},
		PaymentReferenceID: "pi_" + orderNo,
		Currency:           constants.CurrencyDefault,
		OriginalAmount:     models.MustMoney("10"),
		Amount:             models.MustMoney("10"),
		Status:             constants.OrderStatusPaid,
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderServiceOwnership(t *testing.T) {
	db := openServiceTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	svc := NewOrderService(orderRepo, repository.NewUserRepository(db))

	mine := seedOrder(t, orderRepo, "PT1", "me@example.com")
	theirs := seedOrder(t, orderRepo, "PT2", "other@example.com")

	got, err := svc.GetMyOrder("ME@example.com", mine.ID)
	if err != nil || got == nil || got.OrderNo != "PT1" {
		t.Fatalf("expected own order, got %+v err=%v", got, err)
	}
	if _, err := svc.GetMyOrder("me@example.com", theirs.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	orders, total, err := svc.ListMyOrders("me@example.com", 1, 20)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", total)
	}
	if _, _, err := svc.ListMyOrders(" ", 1, 20); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for blank email, got %v", err)
	}
}

func TestOrderServiceListTransactionsAttachesBuyer(t *testing.T) {
	db := openServiceTestDB(t)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	svc := NewOrderService(orderRepo, userRepo)

	if err := userRepo.Create(&models.User{Email: "member@example.com", PasswordHash: "x", FirstName: "Grace", Company: "Hopper LLC"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	seedOrder(t, orderRepo, "PT10", "member@example.com")
	seedOrder(t, orderRepo, "PT11", "guest@example.com")

	items, total, err := svc.ListTransactions(repository.OrderListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 transactions, got %d", total)
	}
	for _, item := range items {
		switch item.UserEmail {
		case "member@example.com":
			if item.Buyer == nil || item.Buyer.Company != "Hopper LLC" {
				t.Fatalf("expected buyer profile, got %+v", item.Buyer)
			}
		case "guest@example.com":
			if item.Buyer != nil {
				t.Fatalf("expected no buyer profile for unregistered email")
			}
		}
	}
}
