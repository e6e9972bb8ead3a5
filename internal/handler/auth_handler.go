package handler

import (
	"errors"
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /authのHTTP
type AuthHandler struct {
	register *auth.RegisterUserUsecase
	verify   *auth.VerifyOTPUsecase
	login    *auth.LoginUsecase
	userRepo repository.UserRepository
}

// DI
func NewAuthHandler(
	register *auth.RegisterUserUsecase,
	verify *auth.VerifyOTPUsecase,
	login *auth.LoginUsecase,
	userRepo repository.UserRepository,
) *AuthHandler {
	return &AuthHandler{
		register: register,
		verify:   verify,
		login:    login,
		userRepo: userRepo,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/auth/register", h.postRegister)
	e.POST("/auth/verify-otp", h.postVerifyOTP)
	e.POST("/auth/resend-otp", h.postResendOTP)
	e.POST("/auth/login", h.postLogin)

	g := e.Group("/auth")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/me", h.getMe)
}

func (h *AuthHandler) postRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.register.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}
	return writeJSON(c, http.StatusCreated, out.User)
}

func (h *AuthHandler) postVerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	err := h.verify.Execute(c.Request().Context(), auth.VerifyOTPInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}
	return writeMessage(c, http.StatusOK, "email verified")
}

func (h *AuthHandler) postResendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.verify.Resend(c.Request().Context(), req.Email); err != nil {
		return h.writeAuthError(c, err)
	}
	return writeMessage(c, http.StatusOK, "otp sent")
}

func (h *AuthHandler) postLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.login.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *AuthHandler) getMe(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.userRepo.FindByID(c.Request().Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return writeErrorMessage(c, http.StatusInternalServerError, "db error")
	}

	safe := *user
	safe.PasswordHash = ""
	safe.OTP = ""
	safe.OTPExpiry = nil
	return writeJSON(c, http.StatusOK, safe)
}

// usecaseのsentinelエラーをHTTPステータスへ
func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrPhoneRequired),
		errors.Is(err, auth.ErrInvalidEmailFormat),
		errors.Is(err, auth.ErrPasswordTooShort):
		return writeErrorMessage(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, auth.ErrEmailAlreadyExists),
		errors.Is(err, auth.ErrAlreadyVerified):
		return writeErrorMessage(c, http.StatusConflict, err.Error())

	case errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrOTPExpired):
		return writeErrorMessage(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrEmailNotVerified):
		return writeErrorMessage(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, auth.ErrUserBlocked):
		return writeErrorMessage(c, http.StatusForbidden, err.Error())

	case errors.Is(err, repository.ErrUserNotFound):
		return writeErrorMessage(c, http.StatusNotFound, "not found")
	}

	return writeErrorMessage(c, http.StatusInternalServerError, "internal error")
}
