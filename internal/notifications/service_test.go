package notifications

import (
	"context"
	"testing"
	"time"

	"folio-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	u := &models.User{Fullname: "Test User", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u.UserID
}

func TestNotifyHolding_DedupWithinWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	holdingID := uuid.New()
	ctx := context.Background()

	created, err := svc.NotifyHolding(ctx, userID, holdingID, "AAPL crossed your target")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.NotifyHolding(ctx, userID, holdingID, "AAPL crossed your target")
	require.NoError(t, err)
	assert.False(t, created, "second notification inside the window is suppressed")

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotifyHolding_DedupIsPerHolding(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	created, err := svc.NotifyHolding(ctx, userID, uuid.New(), "AAPL crossed your target")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.NotifyHolding(ctx, userID, uuid.New(), "BTC crossed your target")
	require.NoError(t, err)
	assert.True(t, created, "a different holding is not suppressed")
}

func TestNotifyHolding_WindowExpires(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	holdingID := uuid.New()
	ctx := context.Background()

	stale := &models.Notification{
		UserID:    userID,
		HoldingID: &holdingID,
		Message:   "AAPL crossed your target",
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, db.Create(stale).Error)

	created, err := svc.NotifyHolding(ctx, userID, holdingID, "AAPL crossed your target")
	require.NoError(t, err)
	assert.True(t, created, "a notification older than the window does not suppress")
}

func TestNotifyAccount_NoDedup(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	require.NoError(t, svc.NotifyAccount(ctx, userID, "Welcome to Folio"))
	require.NoError(t, svc.NotifyAccount(ctx, userID, "Password changed"))

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].HoldingID, "account events carry no holding")
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	require.NoError(t, svc.NotifyAccount(ctx, userID, "one"))
	require.NoError(t, svc.NotifyAccount(ctx, userID, "two"))

	count, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, userID, list[0].NotificationID))

	count, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, svc.MarkRead(ctx, userID, uuid.New()), ErrNotificationNotFound)

	require.NoError(t, svc.MarkAllRead(ctx, userID))
	count, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// MarkRead is scoped to the owner; another user's notification id is a miss.
func TestMarkRead_OtherUsersNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	owner := seedUser(t, db)
	other := seedUser(t, db)
	ctx := context.Background()

	require.NoError(t, svc.NotifyAccount(ctx, owner, "hello"))
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, other, list[0].NotificationID), ErrNotificationNotFound)
}
