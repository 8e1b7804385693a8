package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/njprem/fitcity-password-reset/internal/domain"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
	"github.com/njprem/fitcity-password-reset/internal/util"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAccountNotFound   = errors.New("account not found")
	ErrResetRateLimited  = errors.New("too many active reset codes")
	ErrResetCodeInvalid  = errors.New("invalid or unknown reset code")
	ErrResetCodeMismatch = fmt.Errorf("%w: email does not match", ErrResetCodeInvalid)
	ErrResetCodeExpired  = errors.New("reset code expired or already used")
	ErrResetStorage      = errors.New("reset storage failure")
	// ErrPasswordUpdateFailed is returned when the new hash could not be
	// produced or written. A failed write leaves the code consumed.
	ErrPasswordUpdateFailed = fmt.Errorf("%w: password update", ErrResetStorage)

	errCodeSpaceExhausted = errors.New("no free reset code after retries")
)

const (
	MsgEmailRequired = "A valid email is required."
	MsgCodeRequired  = "A valid 6-digit code is required."
)

// ValidationError reports a rejected input field. It matches ErrInvalidInput
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PasswordResetSender delivers a reset code. Delivery is best effort: the
// service never reports a send failure to the caller.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, maskedEmail, code string) error
}

// PasswordPolicy accepts or rejects a candidate password. The error text is
// shown to the user as is.
type PasswordPolicy func(password string) error

type PasswordResetConfig struct {
	TTL           time.Duration
	MaxActive     int
	MintAttempts  int
	HashCost      int
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
	Policy        PasswordPolicy
}

const (
	defaultResetTTL      = 15 * time.Minute
	defaultMaxActive     = 2
	defaultMintAttempts  = 5
	defaultNotifyTimeout = 10 * time.Second
)

type PasswordResetService struct {
	users  ports.UserRepository
	resets ports.PasswordResetRepository
	mailer PasswordResetSender
	log    *slog.Logger

	ttl           time.Duration
	maxActive     int
	codeDigits    int
	mintAttempts  int
	hashCost      int
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	policy        PasswordPolicy

	now          func() time.Time
	generateCode func(digits int) (string, error)
}

func NewPasswordResetService(
	users ports.UserRepository,
	resets ports.PasswordResetRepository,
	mailer PasswordResetSender,
	logger *slog.Logger,
	cfg PasswordResetConfig,
) *PasswordResetService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	maxActive := cfg.MaxActive
	if maxActive <= 0 {
		maxActive = defaultMaxActive
	}
	attempts := cfg.MintAttempts
	if attempts <= 0 {
		attempts = defaultMintAttempts
	}
	hashCost := cfg.HashCost
	if hashCost <= 0 {
		hashCost = util.DefaultHashCost
	}
	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	policy := cfg.Policy
	if policy == nil {
		policy = util.ValidatePassword
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PasswordResetService{
		users:         users,
		resets:        resets,
		mailer:        mailer,
		log:           logger.With("component", "password_reset"),
		ttl:           ttl,
		maxActive:     maxActive,
		codeDigits:    util.DefaultOTPDigits,
		mintAttempts:  attempts,
		hashCost:      hashCost,
		storeTimeout:  cfg.StoreTimeout,
		notifyTimeout: notifyTimeout,
		policy:        policy,
		now:           time.Now,
		generateCode:  util.GenerateNumericOTP,
	}
}

// RequestReset issues a new reset code for the account registered under
// email and mails it. A nil error means the code was stored; whether the mail
// went out is not reported. ErrAccountNotFound is a soft outcome that callers
// render as a regular response.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	normalized := util.NormalizeEmail(email)
	if !util.ValidEmail(normalized) {
		return &ValidationError{Field: "email", Message: MsgEmailRequired}
	}

	user, err := s.findUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.ErrorContext(ctx, "lookup user for reset failed", "error", err)
		return fmt.Errorf("%w: find user: %w", ErrResetStorage, err)
	}

	now := s.now()
	active, err := s.sweepStale(ctx, user, now)
	if err != nil {
		s.log.ErrorContext(ctx, "list reset codes failed", "owner_id", user.ID, "error", err)
		return fmt.Errorf("%w: list reset codes: %w", ErrResetStorage, err)
	}
	if active >= s.maxActive {
		s.log.InfoContext(ctx, "password reset rate limited", "owner_id", user.ID, "active", active)
		return ErrResetRateLimited
	}

	token, err := s.mint(ctx, user, normalized, now)
	if err != nil {
		s.log.ErrorContext(ctx, "store reset code failed", "owner_id", user.ID, "error", err)
		return fmt.Errorf("%w: create reset code: %w", ErrResetStorage, err)
	}
	s.log.InfoContext(ctx, "password reset code issued", "owner_id", user.ID, "expires_at", token.ExpiresAt)

	s.notify(ctx, user.Email, token.Code)
	return nil
}

// ResetPassword redeems code for email and replaces the owner's password
// hash. The code is consumed before the hash is written, so a failure in the
// final write leaves the code spent and the caller must request a new one.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	normalized := util.NormalizeEmail(email)
	if !util.ValidEmail(normalized) {
		return &ValidationError{Field: "email", Message: MsgEmailRequired}
	}
	if !util.IsNumericCode(code, s.codeDigits) {
		return &ValidationError{Field: "code", Message: MsgCodeRequired}
	}
	if err := s.policy(newPassword); err != nil {
		return &ValidationError{Field: "newPassword", Message: err.Error()}
	}

	token, err := s.findToken(ctx, code)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrResetCodeInvalid
		}
		s.log.ErrorContext(ctx, "load reset code failed", "error", err)
		return fmt.Errorf("%w: find reset code: %w", ErrResetStorage, err)
	}
	if token.Email != normalized {
		return ErrResetCodeMismatch
	}

	now := s.now()
	if !token.Active(now) {
		if err := s.deleteStale(ctx, []string{token.Code}, now); err != nil {
			s.log.WarnContext(ctx, "delete dead reset code failed", "owner_id", token.OwnerID, "error", err)
		}
		return ErrResetCodeExpired
	}

	// Hash before consuming so a hashing failure leaves the code redeemable.
	hash, err := util.HashPassword(newPassword, s.hashCost)
	if err != nil {
		return fmt.Errorf("%w: hash: %w", ErrPasswordUpdateFailed, err)
	}

	if err := s.markUsed(ctx, token); err != nil {
		s.log.WarnContext(ctx, "consume reset code failed", "owner_id", token.OwnerID, "error", err)
		return fmt.Errorf("%w: mark used: %w", ErrResetStorage, err)
	}

	user, err := s.findUserByOwner(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.ErrorContext(ctx, "resolve reset owner failed", "owner_id", token.OwnerID, "error", err)
		return fmt.Errorf("%w: find owner: %w", ErrResetStorage, err)
	}

	if err := s.updatePassword(ctx, user, hash); err != nil {
		s.log.ErrorContext(ctx, "write new password hash failed", "owner_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrPasswordUpdateFailed, err)
	}

	s.log.InfoContext(ctx, "password reset completed", "owner_id", user.ID)
	return nil
}

// sweepStale deletes the owner's used or expired codes and returns how many
// active ones remain. A failed delete is logged and otherwise ignored.
func (s *PasswordResetService) sweepStale(ctx context.Context, user *domain.User, now time.Time) (int, error) {
	tokens, err := s.listTokens(ctx, user)
	if err != nil {
		return 0, err
	}

	active := 0
	var stale []string
	for i := range tokens {
		if tokens[i].Active(now) {
			active++
			continue
		}
		stale = append(stale, tokens[i].Code)
	}

	if len(stale) > 0 {
		if err := s.deleteStale(ctx, stale, now); err != nil {
			s.log.WarnContext(ctx, "reset code cleanup failed", "owner_id", user.ID, "stale", len(stale), "error", err)
		}
	}
	return active, nil
}

func (s *PasswordResetService) mint(ctx context.Context, user *domain.User, email string, now time.Time) (*domain.PasswordResetToken, error) {
	for attempt := 0; attempt < s.mintAttempts; attempt++ {
		code, err := s.generateCode(s.codeDigits)
		if err != nil {
			return nil, err
		}
		token := &domain.PasswordResetToken{
			Code:      code,
			OwnerID:   user.ID,
			Email:     email,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		stored, err := s.createToken(ctx, token)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, ports.ErrCodeTaken) {
			return nil, err
		}
		s.log.DebugContext(ctx, "reset code collision", "attempt", attempt+1)
	}
	return nil, errCodeSpaceExhausted
}

// notify runs detached from the request's cancellation so a client hanging
// up does not abort delivery; only the notify timeout bounds it.
func (s *PasswordResetService) notify(ctx context.Context, email, code string) {
	masked := util.MaskEmail(email)
	if s.mailer == nil {
		s.log.WarnContext(ctx, "no reset sender configured", "email", masked)
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.mailer.SendPasswordReset(sendCtx, email, masked, code); err != nil {
		s.log.WarnContext(ctx, "reset notification failed", "email", masked, "error", err)
	}
}

func (s *PasswordResetService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *PasswordResetService) findUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.users.FindByEmail(ctx, email)
}

func (s *PasswordResetService) findUserByOwner(ctx context.Context, token *domain.PasswordResetToken) (*domain.User, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.users.FindByOwnerID(ctx, token.OwnerID)
}

func (s *PasswordResetService) updatePassword(ctx context.Context, user *domain.User, hash []byte) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.users.UpdatePasswordHash(ctx, user.Email, hash, user.Version)
}

func (s *PasswordResetService) listTokens(ctx context.Context, user *domain.User) ([]domain.PasswordResetToken, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.resets.ListByOwner(ctx, user.ID)
}

func (s *PasswordResetService) createToken(ctx context.Context, token *domain.PasswordResetToken) (*domain.PasswordResetToken, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.resets.Create(ctx, token)
}

func (s *PasswordResetService) findToken(ctx context.Context, code string) (*domain.PasswordResetToken, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.resets.FindByCode(ctx, code)
}

func (s *PasswordResetService) markUsed(ctx context.Context, token *domain.PasswordResetToken) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.resets.MarkUsed(ctx, token.Code, token.Version)
}

func (s *PasswordResetService) deleteStale(ctx context.Context, codes []string, now time.Time) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.resets.DeleteStale(ctx, codes, now)
}
