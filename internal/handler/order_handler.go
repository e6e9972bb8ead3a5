package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /ordersのHTTP（チェックアウトと自分の注文）
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method"`

	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.placeOrder)
	g.GET("", h.listMine)
	g.GET("/:id", h.detail)
	g.GET("/number/:order_number", h.detailByNumber)
}

func (h *OrderHandler) placeOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		PaymentMethod: req.PaymentMethod,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

// 注文番号での照会（注文確認メールからの導線用）
func (h *OrderHandler) detailByNumber(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.GetMyOrderByNumber(c.Request().Context(), userID, c.Param("order_number"))
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}
