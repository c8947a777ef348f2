package auth

import (
	"context"
	"testing"

	"folio-backend/internal/models"

	"github.com/glebarez/sqlite"
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

func validSignup() SignupInput {
	return SignupInput{
		Fullname: "Jane Doe",
		Email:    "jane@example.com",
		Password: "Str0ng!pass",
	}
}

func TestSignup_CreatesUserWithHashedPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}

	u, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Fullname)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.NotEqual(t, "Str0ng!pass", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestSignup_NormalizesEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}

	in := validSignup()
	in.Email = "  Jane@Example.COM "
	u, err := svc.Signup(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestSignup_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	in := validSignup()
	in.Fullname = "x55"
	_, err := svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidFullname)

	in = validSignup()
	in.Email = "not-an-email"
	_, err = svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	in = validSignup()
	in.Password = "short1!"
	_, err = svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidPasswordFormat)

	in = validSignup()
	in.Password = "nodigitshere!"
	_, err = svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidPasswordFormat)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	created, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	u, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.Equal(t, created.UserID, u.UserID)

	// Case-insensitive email lookup.
	_, err = svc.Login(ctx, LoginInput{Email: "JANE@example.com", Password: "Str0ng!pass"})
	assert.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-pass1!"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestDeleteAccount_RemovesAllUserRows(t *testing.T) {
	db := setupTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	u, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	h := &models.Holding{UserID: u.UserID, Name: "Apple", Symbol: "AAPL", AssetType: models.AssetEquity}
	require.NoError(t, db.Create(h).Error)
	require.NoError(t, db.Create(&models.Notification{UserID: u.UserID, Message: "hi"}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, u.UserID.String()))

	var count int64
	require.NoError(t, db.Model(&models.Holding{}).Where("user_id = ?", u.UserID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", u.UserID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestVerifyUser(t *testing.T) {
	got, err := VerifyUser(map[string]interface{}{
		"user_id":  "abc",
		"fullname": "Jane Doe",
		"email":    "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.UserID)
	assert.Equal(t, "Jane Doe", got.Fullname)

	_, err = VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"fullname": "No ID"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
