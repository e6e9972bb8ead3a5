package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// メール確認・最終ログイン・OTPクリアなどの更新
	Update(ctx context.Context, user *model.User) error

	// 管理者用の一覧とステータス変更（block/unblock）
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
	UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error
}
