package auth

import (
	"context"

	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Notifier records account-event notifications (welcome message on sign-up).
type Notifier interface {
	NotifyAccount(ctx context.Context, userID uuid.UUID, message string) error
}

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service  *Service
	Rdb      *redis.Client
	Config   middleware.SessionConfig
	Notifier Notifier
}

// Signup POST /api/v1/auth/signup — create account, start session, set cookie.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Fullname, email and password are required", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Signup(c.Context(), req)
	if err != nil {
		switch err {
		case ErrInvalidFullname, ErrInvalidEmailFormat, ErrInvalidPasswordFormat:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrEmailTaken:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if h.Notifier != nil {
		if err := h.Notifier.NotifyAccount(c.Context(), user.UserID, "Welcome to Folio, "+user.Fullname+"!"); err != nil {
			log.Warn().Err(err).Str("user_id", user.UserID.String()).Msg("welcome notification failed")
		}
	}

	h.startSession(c, user.UserID.String(), user.Fullname, user.Email)
	return response.SuccessCreated(c, "Account created", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
		},
	}, nil)
}

// Login POST /api/v1/auth/login — authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Login(c.Context(), req)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	h.startSession(c, user.UserID.String(), user.Fullname, user.Email)
	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout — destroy session, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	user, _ := VerifyUser(middleware.GetUser(c))

	if sessionID != "" && h.Rdb != nil {
		ctx := context.Background()
		h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID)
		if user != nil {
			h.Rdb.SRem(ctx, userSessionsPrefix+user.UserID, sessionID)
		}
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out", nil, nil)
}

// DeleteAccount DELETE /api/v1/auth/delete-account — remove the account and
// everything scoped to it, then invalidate every session the user holds.
func (h *Handlers) DeleteAccount(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}

	if err := h.Service.DeleteAccount(c.Context(), user.UserID); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	if h.Rdb != nil {
		ctx := context.Background()
		setKey := userSessionsPrefix + user.UserID
		if sessions, err := h.Rdb.SMembers(ctx, setKey).Result(); err == nil {
			for _, sid := range sessions {
				h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
			}
		}
		h.Rdb.Del(ctx, setKey)
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Account deleted", nil, nil)
}

func (h *Handlers) startSession(c *fiber.Ctx, userID, fullname, email string) {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   userID,
		Fullname: fullname,
		Email:    email,
	})
	if h.Rdb != nil {
		if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+userID, sessionID).Err(); err != nil {
			log.Warn().Err(err).Msg("session tracking failed")
		}
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
}
