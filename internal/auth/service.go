package auth

import (
	"context"
	"strings"

	"folio-backend/internal/models"
	"folio-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service performs account operations against the users table.
type Service struct {
	DB *gorm.DB
}

// SignupInput is the sign-up request body.
type SignupInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in the session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Signup validates input, hashes the password and creates the user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fullname := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(fullname) {
		return nil, ErrInvalidFullname
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmailFormat
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPasswordFormat
	}

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Login finds the user by email and verifies the password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// DeleteAccount removes the user and everything scoped to it: holdings,
// alerts, notifications and trade history, in one DB transaction.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PriceAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Holding{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.User{}).Error
	})
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
