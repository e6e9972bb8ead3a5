package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)

	// 同一 (user, product) はINSERTせず数量加算（アトミックなupsert）
	UpsertByUserAndProduct(ctx context.Context, userID int64, productID int64, addQty int64, size string, color string) error

	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error

	// チェックアウト完了時にそのユーザーの明細だけを全削除
	ClearByUserID(ctx context.Context, userID int64) error
}
