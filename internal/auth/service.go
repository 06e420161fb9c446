// internal/auth/service.go

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/amoria-app/amoria-backend/internal/common/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
	ErrAlreadyVerified    = errors.New("account already verified")
)

// CodeSender delivers verification codes. The notifications package
// provides the concrete implementation; the indirection keeps auth from
// depending on it.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, user *User, code string) error
}

// Config holds auth service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
	CodeLength         int
	CodeExpiry         time.Duration
	MaxVerifyAttempts  int
}

type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest, ipAddress string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	VerifyCode(ctx context.Context, userID int64, code string) error
	ResendCode(ctx context.Context, userID int64) error
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	TouchLastActive(ctx context.Context, userID int64)
}

type service struct {
	repo   Repository
	redis  *redis.Client
	sender CodeSender
	config *Config
}

func NewService(repo Repository, redisClient *redis.Client, sender CodeSender, config *Config) Service {
	return &service{
		repo:   repo,
		redis:  redisClient,
		sender: sender,
		config: config,
	}
}

func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         RoleUser,
		Status:       StatusActive,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Verification is best-effort at signup; the client can always hit
	// the resend endpoint.
	if err := s.sendCode(ctx, user); err != nil {
		log.Printf("auth: failed to send verification code to user %d: %v", user.ID, err)
	}

	tokens, err := s.issueTokens(ctx, user, nil, nil)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *service) Signin(ctx context.Context, req *SigninRequest, ipAddress string) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByIdentifier(ctx, req.Identifier)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Banned(time.Now()) {
		return nil, ErrAccountBanned
	}

	var deviceInfo *string
	if req.DeviceInfo != "" {
		deviceInfo = &req.DeviceInfo
	}
	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	tokens, err := s.issueTokens(ctx, user, deviceInfo, ip)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastActive(ctx, user.ID); err != nil {
		log.Printf("auth: failed to update last_active for user %d: %v", user.ID, err)
	}

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != "refresh" {
		return nil, ErrInvalidCredentials
	}

	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if user.Banned(time.Now()) {
		return nil, ErrAccountBanned
	}

	// Rotate: the old session is revoked and a fresh pair issued
	if err := s.repo.DeleteSession(ctx, session.ID); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user, session.DeviceInfo, session.IPAddress)
}

func (s *service) Logout(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken == "" {
		return s.repo.DeleteUserSessions(ctx, userID)
	}

	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil // already gone
	}
	if session.UserID != userID {
		return ErrInvalidCredentials
	}

	return s.repo.DeleteSession(ctx, session.ID)
}

func (s *service) VerifyCode(ctx context.Context, userID int64, code string) error {
	attemptsKey := fmt.Sprintf("verify:attempts:%d", userID)

	attempts, err := s.redis.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to track attempts: %w", err)
	}
	if attempts == 1 {
		s.redis.Expire(ctx, attemptsKey, s.config.CodeExpiry)
	}
	if int(attempts) > s.config.MaxVerifyAttempts {
		return ErrTooManyAttempts
	}

	stored, err := s.redis.Get(ctx, s.codeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("failed to read verification code: %w", err)
	}

	if stored != code {
		return ErrInvalidCode
	}

	s.redis.Del(ctx, s.codeKey(userID), attemptsKey)

	return s.repo.MarkVerified(ctx, userID)
}

func (s *service) ResendCode(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	return s.sendCode(ctx, user)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	return utils.ValidateJWT(token, s.config.JWTSecret)
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// TouchLastActive records activity without surfacing errors to callers.
// Recency feeds the compatibility score, so every authenticated request
// refreshes it.
func (s *service) TouchLastActive(ctx context.Context, userID int64) {
	if err := s.repo.UpdateLastActive(ctx, userID); err != nil {
		log.Printf("auth: failed to touch last_active for user %d: %v", userID, err)
	}
}

func (s *service) sendCode(ctx context.Context, user *User) error {
	code, err := generateCode(s.config.CodeLength)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.codeKey(user.ID), code, s.config.CodeExpiry).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	return s.sender.SendVerificationCode(ctx, user, code)
}

func (s *service) codeKey(userID int64) string {
	return fmt.Sprintf("verify:code:%d", userID)
}

func (s *service) issueTokens(ctx context.Context, user *User, deviceInfo, ipAddress *string) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiry)
	refreshExpiry := now.Add(s.config.RefreshTokenExpiry)

	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	accessToken, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     email,
		Role:      user.Role,
		Type:      "access",
		ExpiresAt: accessExpiry.Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "amoria",
		Subject:   fmt.Sprintf("%d", user.ID),
	}, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Role:      user.Role,
		Type:      "refresh",
		ExpiresAt: refreshExpiry.Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "amoria",
		Subject:   fmt.Sprintf("%d", user.ID),
	}, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		DeviceInfo:   deviceInfo,
		IPAddress:    ipAddress,
		ExpiresAt:    refreshExpiry,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

// generateCode returns a zero-padded numeric code of the given length
func generateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
