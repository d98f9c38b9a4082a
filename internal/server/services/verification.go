// Package services contains the server-side business logic.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/dbx"
	"github.com/clipfeed/clipfeed/internal/logging"
	"github.com/clipfeed/clipfeed/internal/server/auth"
	"github.com/clipfeed/clipfeed/internal/server/models"
	"github.com/clipfeed/clipfeed/internal/server/repositories/repomanager"
	"github.com/clipfeed/clipfeed/internal/server/sms"
)

var phonePattern = regexp.MustCompile(`^\+[0-9]{8,15}$`)

// Seams for tests.
var (
	timeNow = time.Now
	genCode = randomCode
)

// randomCode returns a zero-padded 6-digit code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("error generating code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// VerificationConfig bounds the verification lifecycle.
type VerificationConfig struct {
	CodeTTL            time.Duration
	ResendWindow       time.Duration
	MaxResends         int
	MaxConfirmAttempts int

	SecretKey            string
	TokenValidity        time.Duration
	RefreshTokenValidity time.Duration
}

// TokenPair bundles a short-lived access token and a long-lived, server-stored
// refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// VerificationService runs the phone verification flow: Start issues a code
// via SMS, Confirm checks it and exchanges it for an access token, creating
// the account on first confirmation.
type VerificationService struct {
	db     *sql.DB
	repos  repomanager.RepoManager
	sender sms.Sender
	logger logging.Logger
	cfg    VerificationConfig

	withTx func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

func NewVerificationService(db *sql.DB, repos repomanager.RepoManager,
	sender sms.Sender, logger logging.Logger, cfg VerificationConfig) *VerificationService {
	return &VerificationService{
		db:     db,
		repos:  repos,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
			return dbx.WithTx(ctx, db, nil, fn)
		},
	}
}

// Start validates the phone, enforces the resend throttle, stores a hashed
// code, and sends it over SMS. Returns the verification id the client must
// echo back to Confirm.
func (s *VerificationService) Start(ctx context.Context, phone string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%w: phone must be in E.164 format", common.ErrValidation)
	}

	now := timeNow()

	recent, err := s.repos.Verifications(s.db).CountRecentByPhone(ctx, phone, now.Add(-s.cfg.ResendWindow))
	if err != nil {
		return "", err
	}
	if recent >= s.cfg.MaxResends {
		return "", common.ErrResendThrottled
	}

	code, err := genCode()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing code: %w", err)
	}

	v := &models.PhoneVerification{
		ID:        uuid.NewString(),
		Phone:     phone,
		CodeHash:  string(hash),
		SentAt:    now,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
	}
	if err := s.repos.Verifications(s.db).Create(ctx, v); err != nil {
		return "", err
	}

	text := fmt.Sprintf("Your ClipFeed code is %s", code)
	if err := s.sender.Send(ctx, phone, text); err != nil {
		return "", fmt.Errorf("error delivering code: %w", err)
	}

	s.logger.Info(ctx, "verification started", "phone", phone, "id", v.ID)
	return v.ID, nil
}

// Confirm checks the submitted code against the stored hash. On success it
// marks the verification used, creates the account if the phone is new, and
// returns a fresh token pair together with the user id.
func (s *VerificationService) Confirm(ctx context.Context, verificationID string, code string) (*TokenPair, string, error) {
	if verificationID == "" || code == "" {
		return nil, "", fmt.Errorf("%w: verification id and code are required", common.ErrValidation)
	}

	v, err := s.repos.Verifications(s.db).GetByID(ctx, verificationID)
	if err != nil {
		return nil, "", err
	}
	if v.Confirmed || timeNow().After(v.ExpiresAt) {
		return nil, "", common.ErrCodeExpired
	}

	attempts, err := s.repos.Verifications(s.db).IncrementAttempts(ctx, verificationID)
	if err != nil {
		return nil, "", err
	}
	if attempts > s.cfg.MaxConfirmAttempts {
		return nil, "", common.ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return nil, "", common.ErrCodeInvalid
	}

	var user *models.User
	var pair *TokenPair
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Verifications(tx).MarkConfirmed(ctx, verificationID); err != nil {
			return err
		}
		existing, err := s.repos.Users(tx).GetByPhone(ctx, v.Phone)
		switch {
		case err == nil:
			user = existing
		case errors.Is(err, common.ErrNotFound):
			user = &models.User{ID: uuid.NewString(), Phone: v.Phone, CreatedAt: timeNow()}
			if err := s.repos.Users(tx).Create(ctx, user); err != nil {
				return err
			}
		default:
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user.ID, tx)
		return genErr
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "verification confirmed", "phone", v.Phone, "user_id", user.ID)
	return pair, user.ID, nil
}

// Refresh rotates a refresh token: the presented token is deleted and a fresh
// pair is issued, all in one transaction, so a token can only be redeemed
// once. Expired tokens yield common.ErrRefreshTokenExpired.
func (s *VerificationService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, string, error) {
	if refreshToken == "" {
		return nil, "", fmt.Errorf("%w: refresh token is required", common.ErrValidation)
	}

	stored, err := s.repos.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		return nil, "", err
	}
	if timeNow().After(stored.ExpiresAt) {
		return nil, "", common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, stored.UserID, tx)
		return genErr
	})
	if err != nil {
		return nil, "", err
	}

	return pair, stored.UserID, nil
}

// Revoke deletes a refresh token so it can no longer be redeemed. Revoking an
// unknown token succeeds: the desired state already holds.
func (s *VerificationService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: refresh token is required", common.ErrValidation)
	}
	return s.repos.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

func (s *VerificationService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.cfg.SecretKey, s.cfg.TokenValidity)
	if err != nil {
		return nil, err
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	if err := s.repos.RefreshTokens(tx).Create(ctx, userID, refresh, s.cfg.RefreshTokenValidity); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
