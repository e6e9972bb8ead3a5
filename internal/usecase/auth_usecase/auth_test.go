package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	panic("not used in auth tests")
}

func (m *UserRepoMock) UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	panic("not used in auth tests")
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// テスト用の固定時刻Clock
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

// =====================
// Register
// =====================

func TestRegisterUser_PasswordTooShort(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4), new(MailerMock), fixedClock{testNow})

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name: "Taro", Email: "taro@example.com", Phone: "090", Password: "12345",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4), new(MailerMock), fixedClock{testNow})

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Name: "Taro", Email: "not-an-email", Phone: "090", Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 1}, nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4), new(MailerMock), fixedClock{testNow})

	_, err := uc.Execute(ctx, auth.RegisterUserInput{
		Name: "Taro", Email: "taro@example.com", Phone: "090", Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

func TestRegisterUser_Success_SetsOTPAndSendsMail(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	mail := new(MailerMock)

	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, repository.ErrUserNotFound)

	var saved *model.User
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.User)
	}).Return(nil)
	mail.On("Send", mock.Anything, "taro@example.com", mock.Anything, mock.Anything).Return(nil)

	uc := auth.NewRegisterUserUsecase(repo, auth.NewBcryptPasswordHasher(4), mail, fixedClock{testNow})

	out, err := uc.Execute(ctx, auth.RegisterUserInput{
		Name: "Taro", Email: "taro@example.com", Phone: "09012345678", Password: "secret123",
	})
	assert.NoError(t, err)

	//保存時：OTPは6桁、期限は10分後、平文パスワードは保存しない
	assert.NotNil(t, saved)
	assert.Len(t, saved.OTP, 6)
	assert.Equal(t, testNow.Add(10*time.Minute), *saved.OTPExpiry)
	assert.NotEqual(t, "secret123", saved.PasswordHash)
	assert.False(t, saved.EmailVerified)

	//応答：OTPとハッシュは落とす
	assert.Empty(t, out.User.OTP)
	assert.Empty(t, out.User.PasswordHash)
	mail.AssertNumberOfCalls(t, "Send", 1)
}

// =====================
// VerifyOTP
// =====================

func TestVerifyOTP_WrongCode(t *testing.T) {
	ctx := context.Background()

	expiry := testNow.Add(5 * time.Minute)
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", OTP: "123456", OTPExpiry: &expiry,
	}, nil)

	uc := auth.NewVerifyOTPUsecase(repo, new(MailerMock), fixedClock{testNow})

	err := uc.Execute(ctx, auth.VerifyOTPInput{Email: "taro@example.com", OTP: "654321"})
	assert.ErrorIs(t, err, auth.ErrInvalidOTP)
}

func TestVerifyOTP_Expired(t *testing.T) {
	ctx := context.Background()

	expiry := testNow.Add(-time.Minute)
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", OTP: "123456", OTPExpiry: &expiry,
	}, nil)

	uc := auth.NewVerifyOTPUsecase(repo, new(MailerMock), fixedClock{testNow})

	err := uc.Execute(ctx, auth.VerifyOTPInput{Email: "taro@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, auth.ErrOTPExpired)
}

func TestVerifyOTP_Success_ClearsOTP(t *testing.T) {
	ctx := context.Background()

	expiry := testNow.Add(5 * time.Minute)
	user := &model.User{ID: 1, Email: "taro@example.com", OTP: "123456", OTPExpiry: &expiry}

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.EmailVerified && u.OTP == "" && u.OTPExpiry == nil
	})).Return(nil)

	uc := auth.NewVerifyOTPUsecase(repo, new(MailerMock), fixedClock{testNow})

	err := uc.Execute(ctx, auth.VerifyOTPInput{Email: "taro@example.com", OTP: "123456"})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerifyOTP_AlreadyVerified(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", EmailVerified: true,
	}, nil)

	uc := auth.NewVerifyOTPUsecase(repo, new(MailerMock), fixedClock{testNow})

	err := uc.Execute(ctx, auth.VerifyOTPInput{Email: "taro@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
}

// =====================
// Login
// =====================

func verifiedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hashed, err := auth.NewBcryptPasswordHasher(4).Hash(password)
	assert.NoError(t, err)
	return &model.User{
		ID: 1, Email: "taro@example.com", PasswordHash: hashed,
		Role: model.RoleUser, Status: model.UserStatusActive, EmailVerified: true,
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(verifiedUser(t, "secret123"), nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer("k"), fixedClock{testNow})

	_, err := uc.Execute(ctx, auth.LoginInput{Email: "taro@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer("k"), fixedClock{testNow})

	//存在しないメールも資格情報エラーに丸める
	_, err := uc.Execute(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_BlockedUser(t *testing.T) {
	ctx := context.Background()

	u := verifiedUser(t, "secret123")
	u.Status = model.UserStatusBlocked

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(u, nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer("k"), fixedClock{testNow})

	_, err := uc.Execute(ctx, auth.LoginInput{Email: "taro@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrUserBlocked)
}

func TestLogin_UnverifiedEmail(t *testing.T) {
	ctx := context.Background()

	u := verifiedUser(t, "secret123")
	u.EmailVerified = false

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(u, nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer("k"), fixedClock{testNow})

	_, err := uc.Execute(ctx, auth.LoginInput{Email: "taro@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(verifiedUser(t, "secret123"), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil && u.LastLoginAt.Equal(testNow)
	})).Return(nil)

	uc := auth.NewLoginUsecase(repo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer("k"), fixedClock{testNow})

	out, err := uc.Execute(ctx, auth.LoginInput{Email: "taro@example.com", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token.AccessToken)
	assert.Greater(t, out.Token.ExpiresIn, 0)
	assert.Empty(t, out.User.PasswordHash)
	repo.AssertExpectations(t)
}
