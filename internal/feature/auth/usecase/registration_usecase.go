package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expense_tracker/internal/feature/auth/domain"
	"expense_tracker/internal/feature/auth/domain/entity"
)

const maxNameLength = 100

// RegisterInput is the payload of a signup request.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegistrationUsecase stages signups, confirms them with an emailed code and
// promotes them to users.
type RegistrationUsecase struct {
	tx          TxManager
	users       UserRepository
	pending     PendingUserRepository
	codes       VerificationRepository
	mailer      Mailer
	issuer      *SessionIssuer
	policy      Policy
	now         func() time.Time
	generateOTP func() (string, error)
}

// NewRegistrationUsecase creates a RegistrationUsecase.
func NewRegistrationUsecase(tx TxManager, users UserRepository, pending PendingUserRepository,
	codes VerificationRepository, mailer Mailer, issuer *SessionIssuer, policy Policy) *RegistrationUsecase {
	return &RegistrationUsecase{
		tx:          tx,
		users:       users,
		pending:     pending,
		codes:       codes,
		mailer:      mailer,
		issuer:      issuer,
		policy:      policy,
		now:         time.Now,
		generateOTP: GenerateOTP,
	}
}

// WithClock replaces the time source.
func (u *RegistrationUsecase) WithClock(now func() time.Time) *RegistrationUsecase {
	u.now = now
	return u
}

// Register validates the input, stages a pending user and emails a verification code.
// Re-registering an unexpired pending email overwrites it and restarts verification.
// If the email cannot be sent the staged rows are removed again.
func (u *RegistrationUsecase) Register(ctx context.Context, in RegisterInput) (*entity.PendingUser, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, domain.Validation("Name is required")
	case len([]rune(name)) > maxNameLength:
		return nil, domain.Validation(fmt.Sprintf("Name must be at most %d characters long", maxNameLength))
	case email == "":
		return nil, domain.Validation("Email is required")
	case in.Password == "" || in.ConfirmPassword == "":
		return nil, domain.Validation("Password and confirmation are required")
	case in.Password != in.ConfirmPassword:
		return nil, domain.ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := u.generateOTP()
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	var pending *entity.PendingUser
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := u.users.FindByEmail(ctx, email); err == nil {
			return domain.ErrEmailAlreadyRegistered
		} else if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		existing, err := u.pending.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, ErrPendingUserNotFound):
		case err != nil:
			return fmt.Errorf("failed to look up pending user: %w", err)
		case existing.IsExpired(now, u.policy.PendingUserTTL):
			if err := u.pending.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to delete expired pending user: %w", err)
			}
		default:
			existing.Name = name
			existing.PasswordHash = hash
			existing.OTPAttempts = 0
			existing.LastOTPSent = now
			if err := u.codes.DeleteByPendingUser(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to clear verification codes: %w", err)
			}
			if err := u.pending.Update(ctx, existing); err != nil {
				return fmt.Errorf("failed to update pending user: %w", err)
			}
			pending = existing
		}

		if pending == nil {
			p := &entity.PendingUser{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				CreatedAt:    now,
				LastOTPSent:  now,
			}
			if err := u.pending.Create(ctx, p); err != nil {
				if errors.Is(err, ErrPendingEmailExists) {
					return domain.ErrRegistrationInProgress
				}
				return fmt.Errorf("failed to create pending user: %w", err)
			}
			pending = p
		}

		return u.codes.Create(ctx, &entity.EmailVerification{
			PendingUserID: pending.ID,
			OTP:           code,
			ExpiresAt:     now.Add(u.policy.OTPTTL),
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := u.sendOTP(ctx, pending, code); err != nil {
		cleanupCtx := context.WithoutCancel(ctx)
		if cerr := u.pending.Delete(cleanupCtx, pending.ID); cerr != nil {
			slog.Error("failed to remove pending user after delivery failure", "pending_user_id", pending.ID, "error", cerr)
		}
		return nil, err
	}

	slog.Info("registration staged", "pending_user_id", pending.ID)
	return pending, nil
}

// VerifyEmail checks a submitted code. On success the pending user becomes a verified
// user, its staging rows are removed and a session is issued. Wrong codes consume one
// attempt of the active code's budget.
func (u *RegistrationUsecase) VerifyEmail(ctx context.Context, pendingUserID uint, otp string, client ClientInfo) (*AuthResult, error) {
	otp = strings.TrimSpace(otp)
	if !otpPattern.MatchString(otp) {
		return nil, domain.ErrInvalidOTPFormat
	}

	now := u.now().UTC()
	var user *entity.User
	var outcome error
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := u.pending.FindByID(ctx, pendingUserID)
		if err != nil {
			if errors.Is(err, ErrPendingUserNotFound) {
				return domain.ErrPendingUserNotFound
			}
			return fmt.Errorf("failed to find pending user: %w", err)
		}
		if pending.IsExpired(now, u.policy.PendingUserTTL) {
			if err := u.pending.Delete(ctx, pending.ID); err != nil {
				return fmt.Errorf("failed to delete expired pending user: %w", err)
			}
			outcome = domain.ErrRegistrationExpired
			return nil
		}

		code, err := u.codes.FindActive(ctx, pending.ID)
		if err != nil {
			if errors.Is(err, ErrVerificationNotFound) {
				return domain.ErrInvalidOTP
			}
			return fmt.Errorf("failed to find verification code: %w", err)
		}
		if code.Attempts >= u.policy.OTPMaxAttempts {
			return domain.ErrTooManyAttempts
		}
		if code.IsExpired(now) {
			return domain.ErrOTPExpired
		}

		if subtle.ConstantTimeCompare([]byte(code.OTP), []byte(otp)) != 1 {
			if err := u.codes.IncrementAttempts(ctx, code.ID); err != nil {
				return fmt.Errorf("failed to record attempt: %w", err)
			}
			if err := u.pending.IncrementOTPAttempts(ctx, pending.ID); err != nil {
				return fmt.Errorf("failed to record attempt: %w", err)
			}
			// Commit the increments and report the mismatch afterwards.
			outcome = domain.ErrInvalidOTP
			return nil
		}

		hash := pending.PasswordHash
		user = &entity.User{
			Name:         pending.Name,
			Email:        pending.Email,
			PasswordHash: &hash,
			IsVerified:   true,
		}
		if err := u.users.Create(ctx, user); err != nil {
			if errors.Is(err, ErrEmailAlreadyExists) {
				return domain.ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := u.pending.Delete(ctx, pending.ID); err != nil {
			return fmt.Errorf("failed to delete pending user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}

	slog.Info("email verified", "user_id", user.ID)
	tokens, err := u.issuer.Issue(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// ResendOTP replaces the active code with a new one once the cooldown has elapsed.
// Previous codes are removed only after the new one is delivered, so a failed send
// leaves the code the user already has usable.
func (u *RegistrationUsecase) ResendOTP(ctx context.Context, pendingUserID uint) error {
	code, err := u.generateOTP()
	if err != nil {
		return err
	}

	now := u.now().UTC()
	var pending *entity.PendingUser
	var created *entity.EmailVerification
	var previousSend time.Time
	var outcome error
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := u.pending.FindByID(ctx, pendingUserID)
		if err != nil {
			if errors.Is(err, ErrPendingUserNotFound) {
				return domain.ErrPendingUserNotFound
			}
			return fmt.Errorf("failed to find pending user: %w", err)
		}
		if p.IsExpired(now, u.policy.PendingUserTTL) {
			if err := u.pending.Delete(ctx, p.ID); err != nil {
				return fmt.Errorf("failed to delete expired pending user: %w", err)
			}
			outcome = domain.ErrRegistrationExpired
			return nil
		}
		if !p.CanResend(now, u.policy.OTPResendCooldown) {
			return domain.ErrResendCooldown
		}

		// Prior codes stay until the new one is delivered; FindActive only sees the newest.
		created = &entity.EmailVerification{
			PendingUserID: p.ID,
			OTP:           code,
			ExpiresAt:     now.Add(u.policy.OTPTTL),
			CreatedAt:     now,
		}
		if err := u.codes.Create(ctx, created); err != nil {
			return fmt.Errorf("failed to create verification code: %w", err)
		}

		previousSend = p.LastOTPSent
		p.LastOTPSent = now
		if err := u.pending.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update pending user: %w", err)
		}
		pending = p
		return nil
	})
	if err != nil {
		return err
	}
	if outcome != nil {
		return outcome
	}

	if err := u.sendOTP(ctx, pending, code); err != nil {
		cleanupCtx := context.WithoutCancel(ctx)
		cerr := u.tx.WithinTx(cleanupCtx, func(ctx context.Context) error {
			if err := u.codes.Delete(ctx, created.ID); err != nil {
				return err
			}
			pending.LastOTPSent = previousSend
			return u.pending.Update(ctx, pending)
		})
		if cerr != nil {
			slog.Error("failed to roll back resend after delivery failure", "pending_user_id", pending.ID, "error", cerr)
		}
		return err
	}

	if _, err := u.codes.DeleteUnusedExcept(ctx, pending.ID, created.ID); err != nil {
		slog.Error("failed to invalidate previous codes", "pending_user_id", pending.ID, "error", err)
	}
	return nil
}

func (u *RegistrationUsecase) sendOTP(ctx context.Context, p *entity.PendingUser, code string) error {
	body, err := renderOTPEmail(p.Name, code, u.policy.OTPTTL)
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, u.policy.MailTimeout)
	defer cancel()
	if err := u.mailer.Send(sendCtx, p.Email, otpSubject, body); err != nil {
		slog.Error("failed to send verification email", "pending_user_id", p.ID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}
