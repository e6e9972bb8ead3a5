package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProdProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

// =====================
// Public: List / Detail
// =====================

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(CategoryRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")
}

func TestProductUsecase_ListPublicProducts_InvalidLimit(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(CategoryRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")
}

func TestProductUsecase_ListPublicProducts_InvalidSort(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(CategoryRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "name_asc"})
	assertErrContains(t, err, "invalid sort")
}

func TestProductUsecase_ListPublicProducts_MinAboveMax_EmptyNotError(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(CategoryRepoMock))

	minP := 900.0
	maxP := 100.0

	//min > max はエラーにならず、矛盾した条件として空ページが返る
	pRepo.On("ListPublic", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.MinPrice != nil && *q.MinPrice == 900 && q.MaxPrice != nil && *q.MaxPrice == 100
	})).Return([]model.Product{}, int64(0), nil)

	out, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{
		Page: 1, Limit: 20, MinPrice: &minP, MaxPrice: &maxP,
	})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

func TestProductUsecase_ListPublicProducts_NegativePrice(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(CategoryRepoMock))

	minP := -1.0
	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, MinPrice: &minP})
	assertErrContains(t, err, "min_price")
}

func TestProductUsecase_GetProductDetail_InactiveIsNotFound(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(CategoryRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Status: model.ProductStatusInactive,
	}, nil)

	_, err := uc.GetProductDetail(ctx, 10)
	assertErrContains(t, err, "not found")
}

// =====================
// Admin
// =====================

func TestProductUsecase_AdminCreateProduct_InvalidDiscount(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(CategoryRepoMock))

	_, err := uc.AdminCreateProduct(context.Background(), usecase.AdminSaveProductInput{
		CategoryID: 1, Name: "Mug", Price: 100, DiscountPercentage: 120, Status: "active",
	})
	assertErrContains(t, err, "discount")
}

func TestProductUsecase_AdminCreateProduct_UnknownCategory(t *testing.T) {
	ctx := context.Background()

	cRepo := new(CategoryRepoMock)
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), cRepo)

	cRepo.On("FindByID", mock.Anything, int64(999)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.AdminCreateProduct(ctx, usecase.AdminSaveProductInput{
		CategoryID: 999, Name: "Mug", Price: 100, Status: "active",
	})
	assertErrContains(t, err, "invalid category")
}

func TestProductUsecase_AdminCreateProduct_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	cRepo := new(CategoryRepoMock)
	uc := usecase.NewProductUsecase(pRepo, cRepo)

	cRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1, Name: "Kitchen"}, nil)
	pRepo.On("Create", mock.Anything, mock.Anything).Return(model.Product{ID: 10, Name: "Mug"}, nil)

	p, err := uc.AdminCreateProduct(ctx, usecase.AdminSaveProductInput{
		CategoryID: 1, Name: "Mug", Price: 100, Stock: 5, Status: "active",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
}

func TestProductUsecase_AdminDeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(CategoryRepoMock))

	pRepo.On("SoftDelete", mock.Anything, int64(10)).Return(repo.ErrNotFound)

	err := uc.AdminDeleteProduct(ctx, 10)
	assertErrContains(t, err, "not found")
}
