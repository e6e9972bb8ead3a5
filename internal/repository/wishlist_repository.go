package repository

import (
	"context"

	"app/internal/domain/model"
)

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	Exists(ctx context.Context, userID int64, productID int64) (bool, error)
	Add(ctx context.Context, userID int64, productID int64) error

	// 該当行が無ければErrNotFound
	Remove(ctx context.Context, userID int64, productID int64) error
}
