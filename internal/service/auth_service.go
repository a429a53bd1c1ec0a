package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/auth"
	"github.com/divverma2003/chat-with-me/internal/mail"
	"github.com/divverma2003/chat-with-me/internal/media"
	"github.com/divverma2003/chat-with-me/internal/model"
	"github.com/divverma2003/chat-with-me/internal/repo"
)

const (
	minPasswordLength = 6
	verificationTTL   = 24 * time.Hour
	resendCooldown    = 5 * time.Minute
)

// AuthService owns the credential-store collaborator surface: registration,
// login, token verification, profile updates, and the email verification
// lifecycle.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, time.Time, error)
	VerifyIdentity(ctx context.Context, token string) (*model.User, error)
	UpdateProfilePic(ctx context.Context, userID, picDataURI string) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	ResendVerification(ctx context.Context, email string) error
}

type authService struct {
	users      repo.UserRepository
	jwt        *auth.JWTManager
	media      media.Store
	mailer     mail.Mailer
	appBaseURL string
	logger     *zap.Logger
}

// NewAuthService wires the auth service.
func NewAuthService(
	users repo.UserRepository,
	jwtMgr *auth.JWTManager,
	mediaStore media.Store,
	mailer mail.Mailer,
	appBaseURL string,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:      users,
		jwt:        jwtMgr,
		media:      mediaStore,
		mailer:     mailer,
		appBaseURL: appBaseURL,
		logger:     logger,
	}
}

// Register creates an unverified account and emails its verification link.
// If the email cannot be sent the account is rolled back so the address can
// retry registration.
func (s *authService) Register(ctx context.Context, fullName, email, password string) (*model.User, error) {
	if fullName == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token := uuid.New().String()
	expires := time.Now().Add(verificationTTL)

	user, err := s.users.Create(ctx, &model.User{
		FullName:                 fullName,
		Email:                    email,
		Password:                 hashed,
		IsVerified:               false,
		VerificationToken:        token,
		VerificationTokenExpires: &expires,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := s.sendVerification(ctx, user.Email, user.FullName, token); err != nil {
		if delErr := s.users.Delete(ctx, user.ID.Hex()); delErr != nil {
			s.logger.Error("failed to roll back user after email failure",
				zap.String("user_id", user.ID.Hex()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("register: send verification email: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Login checks credentials and issues a session token. Unverified users may
// log in; the client routes them to the verification screen.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, time.Time, error) {
	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("login: %w", err)
	}

	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("login: %w", err)
	}
	return user, token, expiresAt, nil
}

// VerifyIdentity resolves a session token to its user. Both the HTTP
// middleware and the WebSocket handshake authenticate through this path.
func (s *authService) VerifyIdentity(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("verify identity: %w", err)
	}
	return user, nil
}

// UpdateProfilePic stores the new avatar, points the user at it, and removes
// the previous one best-effort.
func (s *authService) UpdateProfilePic(ctx context.Context, userID, picDataURI string) (*model.User, error) {
	if picDataURI == "" {
		return nil, ErrMissingFields
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	data, contentType, err := media.DecodeDataURI(picDataURI)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	url, err := s.media.Save(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("update profile: store avatar: %w", err)
	}

	updated, err := s.users.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if current.ProfilePic != "" {
		if err := s.media.Remove(ctx, current.ProfilePic); err != nil {
			s.logger.Warn("failed to remove old avatar",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return updated, nil
}

// VerifyEmail consumes a verification token within its validity window.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify email: %w", err)
	}

	if err := s.users.SetVerified(ctx, user.ID.Hex()); err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationTokenExpires = nil
	s.logger.Info("email verified", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// ResendVerification issues a fresh token and re-sends the email. An unknown
// address succeeds silently so the endpoint does not reveal which emails have
// accounts.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resend verification: %w", err)
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	// The previous send time is the token expiry minus its TTL.
	if user.VerificationTokenExpires != nil {
		lastSent := user.VerificationTokenExpires.Add(-verificationTTL)
		if time.Since(lastSent) < resendCooldown {
			return ErrResendTooSoon
		}
	}

	token := uuid.New().String()
	expires := time.Now().Add(verificationTTL)
	if err := s.users.SetVerificationToken(ctx, user.ID.Hex(), token, expires); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}

	if err := s.sendVerification(ctx, user.Email, user.FullName, token); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

func (s *authService) sendVerification(ctx context.Context, email, fullName, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email/%s", s.appBaseURL, token)
	subject, body := mail.VerificationEmail(fullName, verifyURL)
	return s.mailer.Send(ctx, email, subject, body)
}
