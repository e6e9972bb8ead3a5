package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/productsのHTTP
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type SaveProductRequest struct {
	CategoryID         int64   `json:"category_id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Stock              int64   `json:"stock"`
	Status             string  `json:"status"`
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req SaveProductRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), toSaveInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid id")
	}

	var req SaveProductRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), id, toSaveInput(req)); err != nil {
		return writeError(c, err)
	}
	return writeMessage(c, http.StatusOK, "product updated")
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return writeMessage(c, http.StatusOK, "product deleted")
}

func toSaveInput(req SaveProductRequest) usecase.AdminSaveProductInput {
	return usecase.AdminSaveProductInput{
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		Status:             req.Status,
	}
}
