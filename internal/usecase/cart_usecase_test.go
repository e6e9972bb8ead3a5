package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CartRepoMock) UpsertByUserAndProduct(ctx context.Context, userID int64, productID int64, addQty int64, size string, color string) error {
	args := m.Called(ctx, userID, productID, addQty, size, color)
	return args.Error(0)
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	assert.Error(t, err)
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), want), "error %q should contain %q", err.Error(), want)
	}
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_MergesQuantity(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	productRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, productRepo, 50, 500)

	product := model.Product{ID: 10, Name: "Mug", Price: 100, Stock: 10, Status: model.ProductStatusActive}
	productRepo.On("FindByID", mock.Anything, int64(10)).Return(product, nil)

	//既に2個入っている
	existing := []model.CartItem{{ID: 1, UserID: 7, ProductID: 10, Quantity: 2}}
	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return(existing, nil).Once()

	//upsertは追加分の3だけ渡す（加算はDB側）
	cartRepo.On("UpsertByUserAndProduct", mock.Anything, int64(7), int64(10), int64(3), "", "").Return(nil)

	//応答構築用の再取得
	merged := []model.CartItem{{ID: 1, UserID: 7, ProductID: 10, Quantity: 5}}
	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return(merged, nil)

	out, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: 10, Quantity: 3})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InsufficientStock(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	productRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, productRepo, 50, 500)

	product := model.Product{ID: 10, Price: 100, Stock: 4, Status: model.ProductStatusActive}
	productRepo.On("FindByID", mock.Anything, int64(10)).Return(product, nil)

	existing := []model.CartItem{{ID: 1, UserID: 7, ProductID: 10, Quantity: 2}}
	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return(existing, nil)

	//2 + 3 > 4 なので拒否
	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: 10, Quantity: 3})
	assertErrContains(t, err, "insufficient stock")
	cartRepo.AssertNotCalled(t, "UpsertByUserAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	productRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, productRepo, 50, 500)

	product := model.Product{ID: 10, Price: 100, Stock: 10, Status: model.ProductStatusInactive}
	productRepo.On("FindByID", mock.Anything, int64(10)).Return(product, nil)

	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: 10, Quantity: 1})
	assertErrContains(t, err, "product not found")
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc := usecase.NewCartUsecase(new(CartRepoMock), new(CartProductRepoMock), 50, 500)

	_, err := uc.AddToCart(context.Background(), 7, usecase.AddCartInput{ProductID: 10, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

// =====================
// UpdateCartItem / DeleteCartItem
// =====================

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, new(CartProductRepoMock), 50, 500)

	cartRepo.On("IsOwnedByUser", mock.Anything, int64(99), int64(7)).Return(false, nil)

	//他人の明細はnot found扱い
	_, err := uc.UpdateCartItem(ctx, 7, 99, usecase.UpdateCartItemInput{Quantity: 2})
	assertErrContains(t, err, "not found")
}

func TestCartUsecase_UpdateCartItem_ExceedsStock(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	productRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, productRepo, 50, 500)

	cartRepo.On("IsOwnedByUser", mock.Anything, int64(1), int64(7)).Return(true, nil)
	cartRepo.On("FindByID", mock.Anything, int64(1)).Return(model.CartItem{ID: 1, UserID: 7, ProductID: 10, Quantity: 1}, nil)
	productRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Stock: 3, Status: model.ProductStatusActive}, nil)

	_, err := uc.UpdateCartItem(ctx, 7, 1, usecase.UpdateCartItemInput{Quantity: 5})
	assertErrContains(t, err, "insufficient stock")
}

func TestCartUsecase_DeleteCartItem_NotFound(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, new(CartProductRepoMock), 50, 500)

	cartRepo.On("IsOwnedByUser", mock.Anything, int64(5), int64(7)).Return(true, nil)
	cartRepo.On("DeleteByID", mock.Anything, int64(5)).Return(repo.ErrNotFound)

	_, err := uc.DeleteCartItem(ctx, 7, 5)
	assertErrContains(t, err, "not found")
}

// =====================
// GetCart（合計計算）
// =====================

func TestCartUsecase_GetCart_Totals(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	productRepo := new(CartProductRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, productRepo, 50, 500)

	items := []model.CartItem{{ID: 1, UserID: 7, ProductID: 10, Quantity: 1}}
	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return(items, nil)
	productRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "Mug", Price: 100, DiscountPercentage: 0, Stock: 5, Status: model.ProductStatusActive,
	}, nil)

	out, err := uc.GetCart(ctx, 7)
	assert.NoError(t, err)
	//小計100は閾値500未満なので送料50
	assert.Equal(t, float64(100), out.Subtotal)
	assert.Equal(t, float64(50), out.Shipping)
	assert.Equal(t, float64(150), out.Total)
}

func TestCartUsecase_GetCart_Empty(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartRepoMock)
	uc := usecase.NewCartUsecase(cartRepo, new(CartProductRepoMock), 50, 500)

	cartRepo.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	out, err := uc.GetCart(ctx, 7)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	//空カートは送料も0
	assert.Equal(t, float64(0), out.Shipping)
	assert.Equal(t, float64(0), out.Total)
}
