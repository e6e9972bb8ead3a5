package auth

import (
	"context"
	"errors"
	"strings"

	"app/internal/mailer"
	"app/internal/repository"

	"github.com/rs/zerolog/log"
)

var (
	// OTPが一致しない
	ErrInvalidOTP = errors.New("invalid otp")
	// 有効期限切れ（再送が必要）
	ErrOTPExpired = errors.New("otp expired")
	// 確認済みユーザーへの再確認
	ErrAlreadyVerified = errors.New("email already verified")
)

// VerifyOTPUsecaseはメール確認コードの照合と再送。
type VerifyOTPUsecase struct {
	userRepo repository.UserRepository
	mailer   mailer.Mailer
	clock    Clock
}

func NewVerifyOTPUsecase(userRepo repository.UserRepository, mailer mailer.Mailer, clock Clock) *VerifyOTPUsecase {
	return &VerifyOTPUsecase{
		userRepo: userRepo,
		mailer:   mailer,
		clock:    clock,
	}
}

type VerifyOTPInput struct {
	Email string
	OTP   string
}

// ExecuteはOTPを照合してメール確認済みにする。成功したらOTPはクリアする。
func (u *VerifyOTPUsecase) Execute(ctx context.Context, in VerifyOTPInput) error {
	user, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	if user.OTP == "" || user.OTP != strings.TrimSpace(in.OTP) {
		return ErrInvalidOTP
	}
	if user.OTPExpiry == nil || u.clock.Now().After(*user.OTPExpiry) {
		return ErrOTPExpired
	}

	user.EmailVerified = true
	user.OTP = ""
	user.OTPExpiry = nil

	return u.userRepo.Update(ctx, user)
}

// ResendはOTPを作り直して再送する。
func (u *VerifyOTPUsecase) Resend(ctx context.Context, email string) error {
	user, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}

	expiry := u.clock.Now().Add(otpTTL)
	user.OTP = otp
	user.OTPExpiry = &expiry

	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := u.mailer.Send(ctx, user.Email, "Verify your email", otpMailBody(user.Name, otp)); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("otp mail failed")
	}
	return nil
}
