package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/usersのHTTP（一覧とblock/unblock）
type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

// DI
func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/users")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

func (h *AdminUserHandler) updateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid id")
	}

	var req UpdateUserStatusRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return writeError(c, err)
	}
	return writeMessage(c, http.StatusOK, "status updated")
}
