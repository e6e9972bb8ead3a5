package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理者用のユーザー管理（一覧とblock/unblock）。
type AdminUserUsecase struct {
	userRepo repo.UserRepository
}

func NewAdminUserUsecase(userRepo repo.UserRepository) *AdminUserUsecase {
	return &AdminUserUsecase{userRepo: userRepo}
}

type AdminUserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := u.userRepo.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ハッシュとOTPは返さない
	for i := range users {
		users[i].PasswordHash = ""
		users[i].OTP = ""
		users[i].OTPExpiry = nil
	}

	return AdminUserListOutput{
		Items: users,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (u *AdminUserUsecase) UpdateStatus(ctx context.Context, userID int64, status string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s := model.UserStatus(status)
	if s != model.UserStatusActive && s != model.UserStatusBlocked {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	target, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//管理者自身のblockは不可
	if target.Role == model.RoleAdmin && s == model.UserStatusBlocked {
		return NewHTTPError(http.StatusBadRequest, "cannot block admin")
	}

	if err := u.userRepo.UpdateStatus(ctx, userID, s); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
