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

type WishlistRepoMock struct{ mock.Mock }

func (m *WishlistRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.WishlistItem)
	return items, args.Error(1)
}

func (m *WishlistRepoMock) Exists(ctx context.Context, userID int64, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *WishlistRepoMock) Add(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *WishlistRepoMock) Remove(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func TestWishlistUsecase_Add_Duplicate(t *testing.T) {
	ctx := context.Background()

	wRepo := new(WishlistRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Status: model.ProductStatusActive}, nil)
	wRepo.On("Exists", mock.Anything, int64(7), int64(10)).Return(true, nil)

	err := uc.Add(ctx, 7, 10)
	assertErrContains(t, err, "already in wishlist")
	wRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistUsecase_Add_Success(t *testing.T) {
	ctx := context.Background()

	wRepo := new(WishlistRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Status: model.ProductStatusActive}, nil)
	wRepo.On("Exists", mock.Anything, int64(7), int64(10)).Return(false, nil)
	wRepo.On("Add", mock.Anything, int64(7), int64(10)).Return(nil)

	err := uc.Add(ctx, 7, 10)
	assert.NoError(t, err)
	wRepo.AssertExpectations(t)
}

func TestWishlistUsecase_Remove_NotFound(t *testing.T) {
	ctx := context.Background()

	wRepo := new(WishlistRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, new(CartProductRepoMock))

	wRepo.On("Remove", mock.Anything, int64(7), int64(10)).Return(repo.ErrNotFound)

	err := uc.Remove(ctx, 7, 10)
	assertErrContains(t, err, "not found")
}

func TestWishlistUsecase_List_SkipsInactive(t *testing.T) {
	ctx := context.Background()

	wRepo := new(WishlistRepoMock)
	pRepo := new(CartProductRepoMock)
	uc := usecase.NewWishlistUsecase(wRepo, pRepo)

	wRepo.On("ListByUserID", mock.Anything, int64(7)).Return([]model.WishlistItem{
		{ID: 1, UserID: 7, ProductID: 10},
		{ID: 2, UserID: 7, ProductID: 11},
	}, nil)
	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "Mug", Price: 100, DiscountPercentage: 10, Stock: 3, Status: model.ProductStatusActive,
	}, nil)
	pRepo.On("FindByID", mock.Anything, int64(11)).Return(model.Product{
		ID: 11, Status: model.ProductStatusInactive,
	}, nil)

	out, err := uc.List(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, float64(90), out[0].Price)
	assert.True(t, out[0].InStock)
}
