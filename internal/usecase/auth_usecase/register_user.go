package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrNameRequired       = errors.New("name is required")
	ErrPhoneRequired      = errors.New("phone is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// OTPの有効期限
const otpTTL = 10 * time.Minute

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
// 登録時にメール確認用のOTPを発行して送信する。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	mailer   mailer.Mailer
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	mailer mailer.Mailer,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		mailer:   mailer,
		clock:    clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	if strings.TrimSpace(in.Name) == "" {
		return out, ErrNameRequired
	}
	if strings.TrimSpace(in.Phone) == "" {
		return out, ErrPhoneRequired
	}

	// emailの形式チェック
	if !isValidEmailFormat(in.Email) {
		return out, ErrInvalidEmailFormat
	}

	// passwordの長さチェック（最小6文字）
	if len(in.Password) < 6 {
		return out, ErrPasswordTooShort
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	// メール確認用OTPを発行
	otp, err := GenerateOTP()
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	expiry := now.Add(otpTTL)

	user := &model.User{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         strings.TrimSpace(in.Phone),
		PasswordHash:  hashed, // ハッシュを保存（平文は保存しない）
		Role:          model.RoleUser,
		Status:        model.UserStatusActive,
		EmailVerified: false,
		OTP:           otp,
		OTPExpiry:     &expiry,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return out, err
	}

	// OTPメールはベストエフォート（再送できるので失敗しても登録は成立）
	if err := u.mailer.Send(ctx, user.Email, "Verify your email", otpMailBody(user.Name, otp)); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("otp mail failed")
	}

	// 返すときはOTPとハッシュを落とす
	safeUser := *user
	safeUser.PasswordHash = ""
	safeUser.OTP = ""
	safeUser.OTPExpiry = nil

	out.User = safeUser
	return out, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

// GenerateOTPは6桁の数字コードを作る（OSが持つ安全な乱数）。
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpMailBody(name string, otp string) string {
	return "<h2>Email Verification</h2>" +
		"<p>Hi " + name + ",</p>" +
		"<p>Your verification code is: <strong>" + otp + "</strong></p>" +
		"<p>This code expires in 10 minutes.</p>"
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
