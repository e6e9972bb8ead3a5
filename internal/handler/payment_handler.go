package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /paymentsのHTTP。webhookだけは認証なしの公開エンドポイント。
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type CreateSessionRequest struct {
	OrderID int64 `json:"order_id"`
}

// Cashfreeからの通知body（必要な項目だけ拾う）
type cashfreeWebhookRequest struct {
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/session", h.createSession)
	g.POST("/verify/:order_id", h.verify)

	//webhookは署名なしで受ける（Cashfree側からの呼び出し）
	e.POST("/payments/webhook", h.webhook)
}

func (h *PaymentHandler) createSession(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.CreateSession(c.Request().Context(), userID, req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid order_id")
	}

	out, err := h.uc.Verify(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	var req cashfreeWebhookRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	err := h.uc.Webhook(c.Request().Context(), usecase.WebhookInput{
		CFOrderID:     req.Data.Order.OrderID,
		PaymentStatus: req.Data.Payment.PaymentStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeMessage(c, http.StatusOK, "ok")
}
