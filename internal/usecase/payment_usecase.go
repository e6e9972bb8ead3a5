package usecase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/gateway/cashfree"
	"app/internal/mailer"
	repo "app/internal/repository"

	"github.com/rs/zerolog/log"
)

// 決済プロバイダの呼び出し口。実装はgateway/cashfree。
type PaymentGateway interface {
	CreateOrder(ctx context.Context, in cashfree.CreateOrderRequest) (cashfree.CreateOrderResponse, error)
	GetOrder(ctx context.Context, cfOrderID string) (cashfree.OrderStatusResponse, error)
	Refund(ctx context.Context, cfOrderID string, amount float64) (cashfree.RefundResponse, error)
}

// プロバイダ注文IDから内部注文IDを取り出す（ORD-<内部ID>-<サフィックス>）
var cfOrderIDPattern = regexp.MustCompile(`ORD-(\d+)-`)

type PaymentUsecase struct {
	orderRepo repo.OrderRepository
	gateway   PaymentGateway
	mailer    mailer.Mailer
	siteURL   string
}

func NewPaymentUsecase(
	orderRepo repo.OrderRepository,
	gateway PaymentGateway,
	mailer mailer.Mailer,
	siteURL string,
) *PaymentUsecase {
	return &PaymentUsecase{
		orderRepo: orderRepo,
		gateway:   gateway,
		mailer:    mailer,
		siteURL:   siteURL,
	}
}

type PaymentSessionOutput struct {
	SessionID   string `json:"session_id"`
	PaymentLink string `json:"payment_link"`
	CFOrderID   string `json:"order_id"`
}

type VerifyOutput struct {
	Status  string `json:"status"`
	OrderID int64  `json:"order_id"`
}

type WebhookInput struct {
	CFOrderID     string
	PaymentStatus string
}

// CreateSessionはゲートウェイに決済セッションを作り、プロバイダ注文IDを保存する。
// 失敗してもローカルの注文状態は変えない（pendingのまま）。
func (u *PaymentUsecase) CreateSession(ctx context.Context, userID int64, orderID int64) (PaymentSessionOutput, error) {
	if userID <= 0 {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if o.PaymentMethod != model.PaymentMethodCashfree {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order")
	}

	addr, err := o.DecodeShippingAddress()
	if err != nil {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//プロバイダ注文IDは内部ID＋タイムスタンプで毎回変える（再試行の衝突回避）
	cfOrderID := fmt.Sprintf("ORD-%d-%d", o.ID, time.Now().Unix())

	resp, err := u.gateway.CreateOrder(ctx, cashfree.CreateOrderRequest{
		OrderID:       cfOrderID,
		OrderAmount:   o.TotalAmount,
		OrderCurrency: "INR",
		CustomerEmail: addr.Email,
		CustomerPhone: addr.Phone,
		OrderNote:     "Payment for Order " + o.OrderNumber,
		ReturnURL:     u.siteURL + "/checkout?status=success",
	})
	if err != nil {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	if err := u.orderRepo.SetCFOrderID(ctx, o.ID, resp.CFOrderID); err != nil {
		return PaymentSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PaymentSessionOutput{
		SessionID:   resp.OrderID,
		PaymentLink: resp.PaymentLink,
		CFOrderID:   resp.CFOrderID,
	}, nil
}

// Verifyはプロバイダに決済状態を問い合わせて注文を確定/失敗に遷移させる。
// 成功トークン以外はすべてfailed扱いで、pendingのまま放置しない。
func (u *PaymentUsecase) Verify(ctx context.Context, userID int64, orderID int64) (VerifyOutput, error) {
	if userID <= 0 {
		return VerifyOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return VerifyOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return VerifyOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return VerifyOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return VerifyOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if o.CFOrderID == "" {
		return VerifyOutput{}, NewHTTPError(http.StatusBadRequest, "payment session not created")
	}

	resp, err := u.gateway.GetOrder(ctx, o.CFOrderID)
	if err != nil {
		//ゲートウェイ失敗ではローカルの状態は変えない
		return VerifyOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	if isSettled(resp.OrderStatus) {
		if err := u.markCompleted(ctx, o); err != nil {
			return VerifyOutput{}, err
		}
		return VerifyOutput{Status: string(model.PaymentStatusCompleted), OrderID: o.ID}, nil
	}

	//認識できないステータスもfailed
	if err := u.orderRepo.UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusFailed, model.OrderStatusPlaced); err != nil {
		return VerifyOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return VerifyOutput{Status: string(model.PaymentStatusFailed), OrderID: o.ID}, nil
}

// Webhookはプロバイダからの非同期通知。二重配送されても副作用は一度だけ。
func (u *PaymentUsecase) Webhook(ctx context.Context, in WebhookInput) error {
	m := cfOrderIDPattern.FindStringSubmatch(in.CFOrderID)
	if len(m) != 2 {
		return NewHTTPError(http.StatusBadRequest, "unable to process webhook")
	}
	orderID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "unable to process webhook")
	}

	if !strings.EqualFold(in.PaymentStatus, "SUCCESS") {
		return NewHTTPError(http.StatusBadRequest, "unable to process webhook")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.markCompleted(ctx, o)
}

// Refundはキャンセル時などの返金依頼。ベストエフォートで、失敗はログのみ。
func (u *PaymentUsecase) Refund(ctx context.Context, o model.Order) {
	if o.PaymentMethod != model.PaymentMethodCashfree || o.CFOrderID == "" {
		return
	}
	if o.PaymentStatus != model.PaymentStatusCompleted {
		return
	}

	if _, err := u.gateway.Refund(ctx, o.CFOrderID, o.TotalAmount); err != nil {
		log.Error().Err(err).Int64("order_id", o.ID).Msg("refund request failed")
	}
}

// 支払い完了への遷移。既にcompletedなら何もしない（メールも送らない）。
func (u *PaymentUsecase) markCompleted(ctx context.Context, o model.Order) error {
	if o.PaymentStatus == model.PaymentStatusCompleted {
		return nil
	}

	if err := u.orderRepo.UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusCompleted, model.OrderStatusConfirmed); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//入金確認メールはベストエフォート
	addr, err := o.DecodeShippingAddress()
	if err == nil && addr.Email != "" {
		subject := "Payment Received - Order Confirmation"
		body := "<h2>Payment Successful!</h2>" +
			"<p>Your payment has been received and order confirmed.</p>" +
			"<p>Order Number: <strong>" + o.OrderNumber + "</strong></p>"
		if err := u.mailer.Send(ctx, addr.Email, subject, body); err != nil {
			log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("payment mail failed")
		}
	}
	return nil
}

// 成功として扱うプロバイダのステータス語彙
func isSettled(status string) bool {
	switch strings.ToLower(status) {
	case "paid", "succeeded", "success":
		return true
	default:
		return false
	}
}
