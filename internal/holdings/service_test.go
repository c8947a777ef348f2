package holdings

import (
	"context"
	"testing"

	"folio-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Holding{},
		&models.PriceAlert{},
		&models.Notification{},
		&models.Transaction{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	u := &models.User{Fullname: "Test User", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u.UserID
}

func TestCreateHolding(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name:         "Apple Inc",
		Symbol:       "aapl",
		AssetType:    models.AssetEquity,
		Quantity:     dec("10"),
		AveragePrice: dec("150"),
		Broker:       "Fidelity",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, h.HoldingID)
	assert.Equal(t, "AAPL", h.Symbol, "symbol is uppercased")
	assert.True(t, h.Quantity.Equal(dec("10")))
	assert.True(t, h.AveragePrice.Equal(dec("150")))
	assert.True(t, h.CurrentPrice.Equal(dec("150")), "price starts at the purchase average")
	assert.True(t, h.PriceEstimated)

	lots, err := h.Lots()
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Fidelity", lots[0].Broker)

	// Initial position is recorded as a buy.
	var txs []models.Transaction
	require.NoError(t, db.Where("holding_id = ?", h.HoldingID).Find(&txs).Error)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxBuy, txs[0].Type)
}

func TestCreateHolding_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, CreateInput{Symbol: "AAPL", AssetType: models.AssetEquity})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, userID, CreateInput{Name: "Apple", AssetType: models.AssetEquity})
	assert.ErrorIs(t, err, ErrSymbolRequired)

	_, err = svc.Create(ctx, userID, CreateInput{Name: "Apple", Symbol: "AAPL", AssetType: "house"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreateHolding_WatchOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)

	h, err := svc.Create(context.Background(), userID, CreateInput{
		Name: "Bitcoin", Symbol: "BTC", AssetType: models.AssetCrypto,
	})
	require.NoError(t, err)
	assert.True(t, h.Quantity.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("holding_id = ?", h.HoldingID).Count(&count).Error)
	assert.Zero(t, count, "watch-only entry has no trade record")
}

func TestGetHolding_ScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	owner := seedUser(t, db)
	other := seedUser(t, db)

	h, err := svc.Create(context.Background(), owner, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, h.HoldingID)
	assert.ErrorIs(t, err, ErrHoldingNotFound)
}

func TestBuy_UpdatesAverageAndRecordsTrade(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"), Broker: "Fidelity",
	})
	require.NoError(t, err)

	h, err = svc.Buy(ctx, userID, h.HoldingID, dec("10"), dec("200"), "Fidelity")
	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(dec("20")))
	assert.True(t, h.AveragePrice.Equal(dec("150")))

	var txs []models.Transaction
	require.NoError(t, db.Where("holding_id = ? AND type = ?", h.HoldingID, models.TxBuy).Find(&txs).Error)
	assert.Len(t, txs, 2)
}

func TestBuy_NewBrokerAddsLot(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"), Broker: "Fidelity",
	})
	require.NoError(t, err)

	h, err = svc.Buy(ctx, userID, h.HoldingID, dec("5"), dec("120"), "Schwab")
	require.NoError(t, err)

	lots, err := h.Lots()
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.True(t, h.BrokerReconciles())
}

func TestSell_ClampsAndRecordsEffectiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"),
	})
	require.NoError(t, err)

	h, err = svc.Sell(ctx, userID, h.HoldingID, dec("25"), "")
	require.NoError(t, err)
	assert.True(t, h.Quantity.IsZero())
	assert.True(t, h.AveragePrice.Equal(dec("100")), "average survives for re-buy display")

	var tx models.Transaction
	require.NoError(t, db.Where("holding_id = ? AND type = ?", h.HoldingID, models.TxSell).First(&tx).Error)
	assert.True(t, tx.Quantity.Equal(dec("10")), "trade records what was actually sold")
}

func TestSell_ZeroPositionNoTrade(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Bitcoin", Symbol: "BTC", AssetType: models.AssetCrypto,
	})
	require.NoError(t, err)

	_, err = svc.Sell(ctx, userID, h.HoldingID, dec("1"), "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("holding_id = ?", h.HoldingID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetPrice_ClearsEstimatedFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"),
	})
	require.NoError(t, err)
	require.True(t, h.PriceEstimated)

	require.NoError(t, svc.SetPrice(ctx, h.HoldingID, dec("187.5")))

	got, err := svc.Get(ctx, userID, h.HoldingID)
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(dec("187.5")))
	assert.False(t, got.PriceEstimated)

	// Non-positive quotes are ignored.
	require.NoError(t, svc.SetPrice(ctx, h.HoldingID, decimal.Zero))
	got, err = svc.Get(ctx, userID, h.HoldingID)
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(dec("187.5")))
}

func TestListRefreshable_SkipsEmptyPositions(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userA := seedUser(t, db)
	userB := seedUser(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, userA, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userB, CreateInput{
		Name: "Bitcoin", Symbol: "BTC", AssetType: models.AssetCrypto,
		Quantity: dec("0.5"), AveragePrice: dec("40000"),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userA, CreateInput{
		Name: "Watchlist only", Symbol: "TSLA", AssetType: models.AssetEquity,
	})
	require.NoError(t, err)

	list, err := svc.ListRefreshable(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "spans users, skips zero-quantity entries")
}

func TestDeleteHolding_CascadesAlerts(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	userID := seedUser(t, db)
	ctx := context.Background()

	h, err := svc.Create(ctx, userID, CreateInput{
		Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity,
		Quantity: dec("10"), AveragePrice: dec("100"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.PriceAlert{
		UserID: userID, HoldingID: h.HoldingID,
		InitialPrice: dec("100"), TargetPrice: dec("120"), Active: true,
	}).Error)

	require.NoError(t, svc.Delete(ctx, userID, h.HoldingID))

	var count int64
	require.NoError(t, db.Model(&models.PriceAlert{}).Where("holding_id = ?", h.HoldingID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(ctx, userID, h.HoldingID), ErrHoldingNotFound)
}
