package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/pkg/cart"
	pkgdb "github.com/yashrajoria/stayshop/pkg/database"
	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/notification-service/database"
	"github.com/yashrajoria/stayshop/services/notification-service/models"
	"github.com/yashrajoria/stayshop/services/notification-service/repository"
	"github.com/yashrajoria/stayshop/services/notification-service/sender"
	"github.com/yashrajoria/stayshop/services/notification-service/services"
)

type fakeSender struct {
	sent     []sender.Email
	failures int
}

func (f *fakeSender) Send(_ context.Context, email sender.Email) (sender.Delivery, error) {
	if f.failures > 0 {
		f.failures--
		return sender.Delivery{}, errors.New("relay unavailable")
	}
	f.sent = append(f.sent, email)
	return sender.Delivery{MessageID: "msg-1", SentAt: time.Now()}, nil
}

func setup(t *testing.T, s sender.EmailSender) (services.NotificationService, repository.NotificationRepository) {
	t.Helper()
	db, err := pkgdb.Open(pkgdb.Config{Driver: "sqlite"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	repo := repository.NewNotificationRepository(db)
	svc, err := services.NewNotificationService(repo, s, 0, zap.NewNop())
	require.NoError(t, err)
	return svc, repo
}

func event(t *testing.T, eventType string, payload any) *events.Event {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return &events.Event{Type: eventType, Key: "11", Source: "booking-service", Payload: body}
}

func TestProcessEvent_BookingCreated(t *testing.T) {
	fs := &fakeSender{}
	svc, repo := setup(t, fs)

	err := svc.ProcessEvent(context.Background(), event(t, services.EventBookingCreated, map[string]any{
		"booking_id":     11,
		"room_name":      "Deluxe Room",
		"customer_name":  "Mira",
		"customer_email": "mira@example.com",
		"check_in":       "2025-03-01",
		"check_out":      "2025-03-03",
		"nights":         2,
		"total_price":    "5000",
		"payment_ref":    "mock_abc",
	}))
	require.NoError(t, err)

	require.Len(t, fs.sent, 1)
	assert.Equal(t, "mira@example.com", fs.sent[0].To)
	assert.Equal(t, "Your booking is confirmed", fs.sent[0].Subject)
	assert.Contains(t, fs.sent[0].Body, "Hello Mira")
	assert.Contains(t, fs.sent[0].Body, "Deluxe Room")
	assert.Contains(t, fs.sent[0].Body, "Nights: 2")
	assert.Contains(t, fs.sent[0].Body, "Payment reference: mock_abc")

	logs, total, err := repo.GetLogs(context.Background(), models.NotificationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.StatusSent, logs[0].Status)
	assert.Equal(t, "11", logs[0].EventKey)
	assert.Equal(t, 1, logs[0].Attempts)
}

func TestProcessEvent_LargeIDsRenderVerbatim(t *testing.T) {
	fs := &fakeSender{}
	svc, _ := setup(t, fs)

	err := svc.ProcessEvent(context.Background(), event(t, services.EventBookingStatusChanged, map[string]any{
		"booking_id":     1000000,
		"status":         "cancelled",
		"customer_name":  "Mira",
		"customer_email": "mira@example.com",
	}))
	require.NoError(t, err)

	require.Len(t, fs.sent, 1)
	assert.Contains(t, fs.sent[0].Body, "Booking #1000000 is now cancelled.")
}

func TestProcessEvent_RetriesThenFails(t *testing.T) {
	fs := &fakeSender{failures: 5}
	svc, repo := setup(t, fs)

	err := svc.ProcessEvent(context.Background(), event(t, services.EventOrderCreated, map[string]any{
		"order_id": 3, "product_name": "Mug", "quantity": 2,
		"customer_name": "Noor", "customer_email": "noor@example.com", "total_price": "500",
	}))
	require.NoError(t, err)
	assert.Empty(t, fs.sent)

	logs, _, err := repo.GetLogs(context.Background(), models.NotificationFilter{Status: models.StatusFailed})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].Attempts)
	assert.Contains(t, logs[0].Error, "relay unavailable")
}

func TestProcessEvent_RecoversOnRetry(t *testing.T) {
	fs := &fakeSender{failures: 1}
	svc, repo := setup(t, fs)

	require.NoError(t, svc.ProcessEvent(context.Background(), event(t, services.EventOrderStatusChanged, map[string]any{
		"order_id": 3, "status": "cancelled", "customer_name": "Noor", "customer_email": "noor@example.com",
	})))
	require.Len(t, fs.sent, 1)
	assert.Contains(t, fs.sent[0].Body, "Order #3 is now cancelled.")

	logs, _, err := repo.GetLogs(context.Background(), models.NotificationFilter{Recipient: "noor@example.com"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 2, logs[0].Attempts)
	assert.Equal(t, models.StatusSent, logs[0].Status)
}

func TestProcessEvent_SkipsUnknownAndRecipientless(t *testing.T) {
	fs := &fakeSender{}
	svc, repo := setup(t, fs)
	ctx := context.Background()

	require.NoError(t, svc.ProcessEvent(ctx, event(t, "room.renovated", map[string]any{"customer_email": "a@example.com"})))
	require.NoError(t, svc.ProcessEvent(ctx, event(t, services.EventBookingStatusChanged, map[string]any{"booking_id": 1})))
	assert.Empty(t, fs.sent)

	_, total, err := repo.GetLogs(ctx, models.NotificationFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	err = svc.ProcessEvent(ctx, &events.Event{Type: services.EventBookingCreated, Payload: json.RawMessage(`"oops"`)})
	assert.Error(t, err)
}

func TestProcessEvent_CancelledDuringBackoff(t *testing.T) {
	fs := &fakeSender{failures: 5}
	db, err := pkgdb.Open(pkgdb.Config{Driver: "sqlite"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	repo := repository.NewNotificationRepository(db)
	svc, err := services.NewNotificationService(repo, fs, time.Hour, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, svc.ProcessEvent(ctx, event(t, services.EventBookingStatusChanged, map[string]any{
		"booking_id": 4, "status": "confirmed", "customer_email": "mira@example.com",
	})))

	logs, _, err := repo.GetLogs(context.Background(), models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.StatusFailed, logs[0].Status)
	assert.Equal(t, 1, logs[0].Attempts)
	assert.Contains(t, logs[0].Error, "deadline exceeded")
}

func TestStatsAndGetLog(t *testing.T) {
	fs := &fakeSender{}
	svc, _ := setup(t, fs)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.ProcessEvent(ctx, event(t, services.EventOrderCreated, map[string]any{
			"order_id": i, "customer_email": "noor@example.com",
		})))
	}
	fs.failures = 3
	require.NoError(t, svc.ProcessEvent(ctx, event(t, services.EventBookingCreated, map[string]any{
		"booking_id": 9, "customer_email": "mira@example.com",
	})))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.StatusCount{
		{EventType: services.EventBookingCreated, Status: models.StatusFailed, Count: 1},
		{EventType: services.EventOrderCreated, Status: models.StatusSent, Count: 2},
	}, stats)

	logs, _, err := svc.GetLogs(ctx, models.NotificationFilter{Recipient: "mira@example.com"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	got, err := svc.GetLog(ctx, logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "mira@example.com", got.Recipient)

	_, err = svc.GetLog(ctx, 999)
	assert.ErrorIs(t, err, cart.ErrNotFound)
}
