package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/config"
)

const (
	sandboxBaseURL = "https://sandbox.cashfree.com/pg"
	prodBaseURL    = "https://api.cashfree.com/pg"
)

// 決済プロバイダ呼び出しの失敗
var ErrGateway = errors.New("payment gateway error")

// CashfreeのPG APIを叩く薄いクライアント。
// 認証はX-Client-Id / X-Client-Secretの2ヘッダ。リトライはしない。
type Client struct {
	baseURL   string
	appID     string
	secretKey string
	http      *http.Client
}

func NewClient(cfg config.Config) *Client {
	base := sandboxBaseURL
	if cfg.CashfreeMode == "PROD" {
		base = prodBaseURL
	}

	return &Client{
		baseURL:   base,
		appID:     cfg.CashfreeAppID,
		secretKey: cfg.CashfreeSecretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// テスト用にbaseURLを差し替える
func NewClientWithBaseURL(baseURL, appID, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		appID:     appID,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type CreateOrderRequest struct {
	OrderID       string  `json:"order_id"`
	OrderAmount   float64 `json:"order_amount"`
	OrderCurrency string  `json:"order_currency"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	OrderNote     string  `json:"order_note,omitempty"`
	ReturnURL     string  `json:"return_url,omitempty"`
}

type CreateOrderResponse struct {
	CFOrderID   string `json:"cf_order_id"`
	OrderID     string `json:"order_id"`
	PaymentLink string `json:"payment_link"`
	Message     string `json:"message"`
}

type OrderStatusResponse struct {
	OrderID     string  `json:"order_id"`
	CFOrderID   string  `json:"cf_order_id"`
	OrderAmount float64 `json:"order_amount"`
	OrderStatus string  `json:"order_status"`
	Message     string  `json:"message"`
}

type RefundResponse struct {
	RefundID     string  `json:"refund_id"`
	RefundAmount float64 `json:"refund_amount"`
	RefundStatus string  `json:"refund_status"`
	Message      string  `json:"message"`
}

// CreateOrderは決済セッションを作る。POST {base}/orders
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderRequest) (CreateOrderResponse, error) {
	var out CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", in, &out); err != nil {
		return CreateOrderResponse{}, err
	}
	if out.CFOrderID == "" {
		// 200でもcf_order_idが無ければ失敗扱い
		return CreateOrderResponse{}, fmt.Errorf("%w: missing cf_order_id", ErrGateway)
	}
	return out, nil
}

// GetOrderは決済状態を取得する。GET {base}/orders/{id}
func (c *Client) GetOrder(ctx context.Context, cfOrderID string) (OrderStatusResponse, error) {
	var out OrderStatusResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+cfOrderID, nil, &out); err != nil {
		return OrderStatusResponse{}, err
	}
	return out, nil
}

// Refundは返金を依頼する。POST {base}/orders/{id}/refunds
func (c *Client) Refund(ctx context.Context, cfOrderID string, amount float64) (RefundResponse, error) {
	payload := map[string]interface{}{"order_id": cfOrderID}
	if amount > 0 {
		payload["refund_amount"] = amount
	}

	var out RefundResponse
	if err := c.do(ctx, http.MethodPost, "/orders/"+cfOrderID+"/refunds", payload, &out); err != nil {
		return RefundResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Client-Id", c.appID)
	req.Header.Set("X-Client-Secret", c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		//エラーでもmessageを拾って返す
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s", ErrGateway, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid response body", ErrGateway)
	}
	return nil
}
