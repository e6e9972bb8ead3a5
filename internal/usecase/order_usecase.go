package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/pricing"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	mailer mailer.Mailer

	shippingFlatFee       float64
	freeShippingThreshold float64
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	mailer mailer.Mailer,
	shippingFlatFee float64,
	freeShippingThreshold float64,
) *OrderUsecase {
	return &OrderUsecase{
		tx:                    tx,
		mailer:                mailer,
		shippingFlatFee:       shippingFlatFee,
		freeShippingThreshold: freeShippingThreshold,
	}
}

type PlaceOrderInput struct {
	PaymentMethod string

	//配送先
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
}

type OrderItemOutput struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	OrderNumber   string            `json:"order_number"`
	Subtotal      float64           `json:"subtotal"`
	ShippingCost  float64           `json:"shipping_cost"`
	TotalAmount   float64           `json:"total_amount"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status"`
	OrderStatus   string            `json:"order_status"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// PlaceOrderはカートを注文に変換する。
// 注文・明細・在庫減算・カートクリアは1トランザクションで、部分的な注文は残さない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = model.PaymentMethodCOD
	}
	if method != model.PaymentMethodCOD && method != model.PaymentMethodCashfree {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	//配送先の必須チェック（最初に空だった項目を返す）
	if err := validateShipping(in); err != nil {
		return OrderOutput{}, err
	}

	addr := model.ShippingAddress{
		Name:       strings.TrimSpace(in.FirstName + " " + in.LastName),
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
	}
	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート取得
		cartItems, err := r.Cart().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			//空カートは注文を作らず早期リターン
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//現在価格で明細スナップショットを作りつつ在庫を減らす
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		lines := make([]pricing.Line, 0, len(cartItems))

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid cart item")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Status != model.ProductStatusActive {
				return NewHTTPError(http.StatusBadRequest, "invalid cart item")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "insufficient stock")
			}

			price := pricing.EffectivePrice(p.Price, p.DiscountPercentage)
			orderItems = append(orderItems, model.OrderItem{
				ProductID:   ci.ProductID,
				ProductName: p.Name,
				Price:       price,
				Quantity:    ci.Quantity,
				Subtotal:    price * float64(ci.Quantity),
			})
			lines = append(lines, pricing.Line{
				Price:              p.Price,
				DiscountPercentage: p.DiscountPercentage,
				Quantity:           ci.Quantity,
			})
		}

		totals := pricing.ComputeTotals(lines, u.shippingFlatFee, u.freeShippingThreshold)

		//注文作成。注文番号はユニーク制約があるので、衝突したら作り直して1回だけリトライ。
		now := time.Now()
		var orderID int64
		orderNumber := generateOrderNumber(now)

		for attempt := 0; ; attempt++ {
			orderID, err = r.Orders().Create(ctx, model.Order{
				UserID:              userID,
				OrderNumber:         orderNumber,
				Subtotal:            totals.Subtotal,
				ShippingCost:        totals.Shipping,
				TotalAmount:         totals.Total,
				PaymentMethod:       method,
				PaymentStatus:       model.PaymentStatusPending,
				OrderStatus:         model.OrderStatusPlaced,
				ShippingAddressJSON: string(addrJSON),
			})
			if err == nil {
				break
			}
			if attempt >= 1 {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			orderNumber = generateOrderNumber(time.Now())
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをクリア（このユーザーの分だけ）
		if err := r.Cart().ClearByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(model.Order{
			ID:            orderID,
			UserID:        userID,
			OrderNumber:   orderNumber,
			Subtotal:      totals.Subtotal,
			ShippingCost:  totals.Shipping,
			TotalAmount:   totals.Total,
			PaymentMethod: method,
			PaymentStatus: model.PaymentStatusPending,
			OrderStatus:   model.OrderStatusPlaced,
			CreatedAt:     now,
		}, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//確認メールはベストエフォート。失敗しても注文は成立している。
	u.sendConfirmationMail(ctx, addr.Email, out)

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
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
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
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

// GetMyOrderByNumberは注文番号（メールに載せる人間向けID）での照会。
func (u *OrderUsecase) GetMyOrderByNumber(ctx context.Context, userID int64, orderNumber string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order number")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, orderNumber)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
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

func validateShipping(in PlaceOrderInput) error {
	checks := []struct {
		value string
		name  string
	}{
		{in.FirstName, "first_name"},
		{in.Email, "email"},
		{in.Phone, "phone"},
		{in.Address, "address"},
		{in.City, "city"},
		{in.State, "state"},
		{in.PostalCode, "postal_code"},
	}

	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return NewHTTPError(http.StatusBadRequest, c.name+" is required")
		}
	}
	return nil
}

// 人間向けの注文番号。タイムスタンプ＋ランダムサフィックス。
// 一意性はDBのユニーク制約で守り、衝突時は作り直す。
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.Format("20060102150405") + "-" + suffix
}

func (u *OrderUsecase) sendConfirmationMail(ctx context.Context, to string, o OrderOutput) {
	subject := "Order Confirmation - " + o.OrderNumber
	body := "<h2>Order Confirmed!</h2>" +
		"<p>Thank you for your order. Your order number is: <strong>" + o.OrderNumber + "</strong></p>" +
		fmt.Sprintf("<p>Total Amount: <strong>%.2f</strong></p>", o.TotalAmount)

	if err := u.mailer.Send(ctx, to, subject, body); err != nil {
		log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("order confirmation mail failed")
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		OrderNumber:   o.OrderNumber,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
