package repository

import (
	"context"

	"app/internal/domain/model"
)

type SettingRepository interface {
	ListAll(ctx context.Context) ([]model.Setting, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
}
