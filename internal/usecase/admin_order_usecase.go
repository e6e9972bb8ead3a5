package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// キャンセル時の返金依頼口。PaymentUsecaseが実装する。
type Refunder interface {
	Refund(ctx context.Context, o model.Order)
}

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	refunder Refunder
}

func NewAdminOrderUsecase(tx repo.TransactionManager, refunder Refunder) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:       tx,
		refunder: refunder,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文ステータスは前進のみ。delivered/cancelledは終端。
var nextOrderStatus = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.OrderStatusPlaced: {
		model.OrderStatusConfirmed: true,
		model.OrderStatusCancelled: true,
	},
	model.OrderStatusConfirmed: {
		model.OrderStatusPacked:    true,
		model.OrderStatusCancelled: true,
	},
	model.OrderStatusPacked: {
		model.OrderStatusShipped:   true,
		model.OrderStatusCancelled: true,
	},
	model.OrderStatusShipped: {
		model.OrderStatusDelivered: true,
	},
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	status := strings.TrimSpace(in.Status)
	if status != "" {
		switch model.OrderStatus(status) {
		case model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked,
			model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled:
		default:
			return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	var out AdminOrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: status,
			UserID: in.UserID,
			From:   in.From,
			To:     in.To,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, toOrderOutput(o, lines))
		}

		out = AdminOrderListOutput{
			Items: items,
			Total: total,
			Page:  in.Page,
			Limit: in.Limit,
		}
		return nil
	})

	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdateStatusは注文を次のステータスへ進める。
// キャンセル時は在庫の戻しまで同一トランザクションで行い、返金はコミット後にベストエフォート。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID int64, newStatus string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	target := model.OrderStatus(strings.TrimSpace(newStatus))
	switch target {
	case model.OrderStatusConfirmed, model.OrderStatusPacked, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var cancelled model.Order
	var needRefund bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		allowed := nextOrderStatus[o.OrderStatus]
		if !allowed[target] {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		if target == model.OrderStatusCancelled {
			//出荷前のキャンセルは在庫を戻す
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}

			cancelled = o
			needRefund = o.PaymentStatus == model.PaymentStatusCompleted
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, target); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return err
	}

	if needRefund && u.refunder != nil {
		u.refunder.Refund(ctx, cancelled)
	}
	return nil
}
