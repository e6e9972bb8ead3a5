package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 返金依頼を記録するだけのRefunder
type refunderSpy struct {
	called int
	last   model.Order
}

func (r *refunderSpy) Refund(ctx context.Context, o model.Order) {
	r.called++
	r.last = o
}

func TestAdminOrderUsecase_UpdateStatus_ForwardOnly(t *testing.T) {
	ctx := context.Background()

	tx := newFakeTx()
	uc := usecase.NewAdminOrderUsecase(tx, &refunderSpy{})

	tx.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, OrderStatus: model.OrderStatusShipped,
	}, nil)

	//shippedからpackedへは戻せない
	err := uc.UpdateStatus(ctx, 100, "packed")
	assertErrContains(t, err, "invalid status transition")
	tx.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_DeliveredIsTerminal(t *testing.T) {
	ctx := context.Background()

	tx := newFakeTx()
	uc := usecase.NewAdminOrderUsecase(tx, &refunderSpy{})

	tx.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, OrderStatus: model.OrderStatusDelivered,
	}, nil)

	err := uc.UpdateStatus(ctx, 100, "cancelled")
	assertErrContains(t, err, "invalid status transition")
}

func TestAdminOrderUsecase_UpdateStatus_Advance(t *testing.T) {
	ctx := context.Background()

	tx := newFakeTx()
	uc := usecase.NewAdminOrderUsecase(tx, &refunderSpy{})

	tx.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, OrderStatus: model.OrderStatusPlaced,
	}, nil)
	tx.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusConfirmed).Return(nil)

	err := uc.UpdateStatus(ctx, 100, "confirmed")
	assert.NoError(t, err)
	tx.orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_Cancel_RestoresStock(t *testing.T) {
	ctx := context.Background()

	tx := newFakeTx()
	spy := &refunderSpy{}
	uc := usecase.NewAdminOrderUsecase(tx, spy)

	tx.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, OrderStatus: model.OrderStatusConfirmed, PaymentStatus: model.PaymentStatusPending,
	}, nil)
	tx.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 1},
	}, nil)
	tx.inventory.On("IncreaseStock", mock.Anything, int64(10), int64(2)).Return(nil)
	tx.inventory.On("IncreaseStock", mock.Anything, int64(11), int64(1)).Return(nil)
	tx.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusCancelled).Return(nil)

	err := uc.UpdateStatus(ctx, 100, "cancelled")
	assert.NoError(t, err)
	tx.inventory.AssertExpectations(t)

	//未決済なので返金依頼は出さない
	assert.Equal(t, 0, spy.called)
}

func TestAdminOrderUsecase_Cancel_CompletedPayment_Refunds(t *testing.T) {
	ctx := context.Background()

	tx := newFakeTx()
	spy := &refunderSpy{}
	uc := usecase.NewAdminOrderUsecase(tx, spy)

	tx.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, OrderStatus: model.OrderStatusConfirmed,
		PaymentMethod: model.PaymentMethodCashfree, PaymentStatus: model.PaymentStatusCompleted,
		CFOrderID: "cf_100_abc", TotalAmount: 1800,
	}, nil)
	tx.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ProductID: 10, Quantity: 1},
	}, nil)
	tx.inventory.On("IncreaseStock", mock.Anything, int64(10), int64(1)).Return(nil)
	tx.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusCancelled).Return(nil)

	err := uc.UpdateStatus(ctx, 100, "cancelled")
	assert.NoError(t, err)
	assert.Equal(t, 1, spy.called)
	assert.Equal(t, int64(100), spy.last.ID)
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(newFakeTx(), &refunderSpy{})

	_, err := uc.List(context.Background(), usecase.AdminOrderListInput{Status: "bogus"})
	assertErrContains(t, err, "invalid status")
}
