package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hindusthan/agriserve/internal/models"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
	"github.com/hindusthan/agriserve/pkg/mail"
)

const (
	defaultOTPExpiry = 5 * time.Minute

	otpMin = 100000
	otpMax = 999999
)

// OTPOption customises the OTPService.
type OTPOption func(*OTPService)

// WithOTPExpiry overrides the code lifetime.
func WithOTPExpiry(d time.Duration) OTPOption {
	return func(s *OTPService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithOTPClock injects a custom time source.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPRand injects a custom random source returning a value in [0, max).
// Intended for deterministic tests.
func WithOTPRand(randInt func(max int64) (int64, error)) OTPOption {
	return func(s *OTPService) {
		if randInt != nil {
			s.randInt = randInt
		}
	}
}

// OTPService manages the one-time verification codes sent after signup.
type OTPService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	expiry  time.Duration
	now     func() time.Time
	randInt func(max int64) (int64, error)
}

// NewOTPService constructs an OTPService. The mailer may be nil when no
// out-of-band delivery channel is configured.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, opts ...OTPOption) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}

	service := &OTPService{
		db:     db,
		mailer: mailer,
		expiry: defaultOTPExpiry,
		now:    time.Now,
		randInt: func(max int64) (int64, error) {
			n, err := rand.Int(rand.Reader, big.NewInt(max))
			if err != nil {
				return 0, err
			}
			return n.Int64(), nil
		},
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Expiry returns the configured code lifetime.
func (s *OTPService) Expiry() time.Duration {
	return s.expiry
}

// Replace issues a fresh code for the email, invalidating any previous one.
// The unique index on email turns replacement into a single upsert, so two
// concurrent requests cannot leave duplicate active codes behind.
func (s *OTPService) Replace(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("otp service: email is required")
	}

	code, err := s.generateCode()
	if err != nil {
		return "", fmt.Errorf("otp service: generate code: %w", err)
	}

	now := s.now().UTC()
	record := models.OneTimeCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.expiry),
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"code":       record.Code,
				"expires_at": record.ExpiresAt,
				"updated_at": now,
			}),
		}).
		Create(&record).Error; err != nil {
		return "", fmt.Errorf("otp service: store code: %w", err)
	}

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "Your verification code",
			Body:    s.deliveryBody(code),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return "", fmt.Errorf("otp service: send email: %w", mailErr)
		}
	}

	return code, nil
}

// Consume checks the supplied code for the email. A missing pair reports
// ErrInvalidOTP; an expired code is removed and reports ErrOTPExpired. The
// caller is responsible for deleting the record after a successful use.
func (s *OTPService) Consume(ctx context.Context, email, code string) error {
	var record models.OneTimeCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("otp service: find code: %w", err)
	}

	if s.now().UTC().After(record.ExpiresAt) {
		if err := s.db.WithContext(ctx).Delete(&record).Error; err != nil {
			return fmt.Errorf("otp service: delete expired code: %w", err)
		}
		return apperrors.ErrOTPExpired
	}

	return nil
}

// Delete removes any code stored for the email.
func (s *OTPService) Delete(ctx context.Context, email string) error {
	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.OneTimeCode{}).Error; err != nil {
		return fmt.Errorf("otp service: delete code: %w", err)
	}
	return nil
}

// PurgeExpired removes all codes that expired before now and reports how
// many rows were deleted.
func (s *OTPService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&models.OneTimeCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("otp service: purge expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// generateCode draws a uniformly random 6-digit numeric string.
func (s *OTPService) generateCode() (string, error) {
	n, err := s.randInt(otpMax - otpMin + 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", otpMin+n), nil
}

func (s *OTPService) deliveryBody(code string) string {
	minutes := int(s.expiry.Minutes())
	return fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes. If you did not request this code, you can ignore this message.\n", code, minutes)
}
