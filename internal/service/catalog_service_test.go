package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/queue"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeoffServiceLifecycle(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewTakeoffService(repository.NewTakeoffRepository(db))

	hidden := false
	draft, err := svc.Create(7, TakeoffInput{
		Title:    " Draft Plan ",
		Category: "Residential",
		Price:    models.MustMoney("49.5"),
		IsActive: &hidden,
		Images:   []string{" /uploads/image/a.png ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft Plan", draft.Title)
	assert.Equal(t, models.StringArray{"/uploads/image/a.png"}, draft.Images)

	live, err := svc.Create(7, TakeoffInput{Title: "Warehouse", Category: "Commercial", Price: models.MustMoney("300")})
	require.NoError(t, err)

	_, err = svc.GetPublic(draft.ID)
	assert.ErrorIs(t, err, ErrTakeoffNotFound)

	public, total, err := svc.ListPublic(repository.TakeoffListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, public, 1)
	assert.Equal(t, live.ID, public[0].ID)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Commercial"}, categories)

	all, total, err := svc.ListAdmin(repository.TakeoffListFilter{Page: 1, PageSize: 10, OnlyActive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	require.NoError(t, repository.NewTakeoffRepository(db).IncrementPurchaseCount(live.ID, 3))
	updated, err := svc.Update(live.ID, TakeoffInput{Title: "Warehouse v2", Price: models.MustMoney("320")})
	require.NoError(t, err)
	assert.Equal(t, "Warehouse v2", updated.Title)
	assert.Equal(t, 3, updated.PurchaseCount)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(live.ID, TakeoffInput{Title: "", Price: models.MustMoney("1")})
	assert.ErrorIs(t, err, ErrTakeoffInvalid)
	_, err = svc.Create(7, TakeoffInput{Title: "Negative", Price: models.MustMoney("-1")})
	assert.ErrorIs(t, err, ErrTakeoffInvalid)

	require.NoError(t, svc.Delete(live.ID))
	_, err = svc.Get(live.ID)
	assert.ErrorIs(t, err, ErrTakeoffNotFound)
	assert.ErrorIs(t, svc.Delete(live.ID), ErrTakeoffNotFound)
}

type fakeContactQueue struct {
	mu            sync.Mutex
	payloads      []queue.ContactNotificationPayload
	confirmations []queue.ContactConfirmationPayload
	err           error
}

func (q *fakeContactQueue) EnqueueContactNotification(payload queue.ContactNotificationPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return q.err
}

func (q *fakeContactQueue) EnqueueContactConfirmation(payload queue.ContactConfirmationPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.confirmations = append(q.confirmations, payload)
	return q.err
}

func TestContactServiceSubmit(t *testing.T) {
	db := openServiceTestDB(t)
	q := &fakeContactQueue{}
	svc := NewContactService(repository.NewContactMessageRepository(db), q)

	msg, err := svc.Submit(ContactInput{Name: " Lee ", Email: "LEE@Example.com", Company: " Lee Civil ", Message: "Do you do civil takeoffs?", ClientIP: "10.0.0.1", Locale: "zh-CN"})
	require.NoError(t, err)
	assert.Equal(t, "lee@example.com", msg.Email)
	assert.Equal(t, "Lee Civil", msg.Company)
	assert.Equal(t, constants.ContactStatusNew, msg.Status)
	require.Len(t, q.payloads, 1)
	assert.Equal(t, msg.ID, q.payloads[0].MessageID)
	require.Len(t, q.confirmations, 1)
	assert.Equal(t, queue.ContactConfirmationPayload{MessageID: msg.ID, Locale: "zh-CN"}, q.confirmations[0])

	invalid := []ContactInput{
		{Name: "", Email: "a@example.com", Message: "hi"},
		{Name: "A", Email: "nope", Message: "hi"},
		{Name: "A", Email: "a@example.com", Message: "   "},
	}
	for _, input := range invalid {
		_, err := svc.Submit(input)
		assert.ErrorIs(t, err, ErrContactInvalid)
	}

	q.err = errors.New("redis down")
	_, err = svc.Submit(ContactInput{Name: "B", Email: "b@example.com", Message: "still saved"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(msg.ID, "Replied")
	require.NoError(t, err)
	assert.Equal(t, constants.ContactStatusReplied, updated.Status)
	archived, err := svc.UpdateStatus(msg.ID, "Archived")
	require.NoError(t, err)
	assert.Equal(t, constants.ContactStatusArchived, archived.Status)
	_, err = svc.UpdateStatus(msg.ID, "spam")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.UpdateStatus(9999, constants.ContactStatusRead)
	assert.ErrorIs(t, err, ErrContactNotFound)

	list, total, err := svc.List(repository.ContactMessageListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestContactServiceStatsAndDelete(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewContactService(repository.NewContactMessageRepository(db), nil)
	clock := time.Date(2026, 5, 4, 9, 0, 0, 0, time.Local)

	svc.now = func() time.Time { return clock.Add(-24 * time.Hour) }
	yesterday, err := svc.Submit(ContactInput{Name: "Old", Email: "old@example.com", Message: "last week"})
	require.NoError(t, err)
	svc.now = func() time.Time { return clock }
	_, err = svc.Submit(ContactInput{Name: "New", Email: "new@example.com", Message: "today"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(yesterday.ID, constants.ContactStatusArchived)
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Today)
	assert.Equal(t, map[string]int64{
		constants.ContactStatusNew:      1,
		constants.ContactStatusRead:     0,
		constants.ContactStatusReplied:  0,
		constants.ContactStatusArchived: 1,
	}, stats.ByStatus)

	require.NoError(t, svc.Delete(yesterday.ID))
	assert.ErrorIs(t, svc.Delete(yesterday.ID), ErrContactNotFound)
	_, err = svc.Get(yesterday.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestReconciliationServiceResolve(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewReconciliationRepository(db)
	svc := NewReconciliationService(repo)

	record := &models.CheckoutReconciliation{
		PaymentReferenceID: "pi_123",
		UserEmail:          "buyer@example.com",
		Amount:             models.MustMoney("90"),
		Currency:           "usd",
		Reason:             "db down",
	}
	require.NoError(t, repo.Create(record))

	count, err := svc.CountUnresolved()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.Resolve(record.ID, 1))
	assert.ErrorIs(t, svc.Resolve(record.ID, 1), ErrReconciliationNotFound)

	count, err = svc.CountUnresolved()
	require.NoError(t, err)
	assert.Zero(t, count)
}
