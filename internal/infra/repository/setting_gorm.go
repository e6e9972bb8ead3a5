package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type SettingGormRepository struct {
	db *gorm.DB
}

// DI
func NewSettingGormRepository(db *gorm.DB) *SettingGormRepository {
	return &SettingGormRepository{db: db}
}

func (r *SettingGormRepository) ListAll(ctx context.Context) ([]model.Setting, error) {
	var rows []model.Setting
	if err := r.db.WithContext(ctx).Order("setting_key asc").Find(&rows).Error; err != nil {
		return []model.Setting{}, err
	}
	return rows, nil
}

type CategoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var rows []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return []model.Category{}, err
	}
	return rows, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}
