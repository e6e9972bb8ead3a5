package handler

import (
	"net/http"
	"strconv"

	"app/internal/settings"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products・/categories・/settingsの公開API
type ProductHandler struct {
	uc       *usecase.ProductUsecase
	settings *settings.Cache
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, settings *settings.Cache) *ProductHandler {
	return &ProductHandler{uc: uc, settings: settings}
}

// 公開ルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/categories", h.categories)
	e.GET("/settings", h.siteSettings)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}

	// limit（default 12）
	limit := 12
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	in := usecase.ListProductsInput{
		Page:  page,
		Limit: limit,
		Q:     c.QueryParam("q"),
		Sort:  c.QueryParam("sort"),
	}

	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid category_id")
		}
		in.CategoryID = &id
	}
	if v := c.QueryParam("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid min_price")
		}
		in.MinPrice = &f
	}
	if v := c.QueryParam("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid max_price")
		}
		in.MaxPrice = &f
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, cats)
}

// サイト設定はキャッシュから返す（DBは読まない）
func (h *ProductHandler) siteSettings(c echo.Context) error {
	return writeJSON(c, http.StatusOK, h.settings.All())
}
