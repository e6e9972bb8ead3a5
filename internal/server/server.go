package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// 全handlerをまとめてDIする
type Deps struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Wishlist     *handler.WishlistHandler
	Order        *handler.OrderHandler
	Payment      *handler.PaymentHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminUser    *handler.AdminUserHandler
}

// Newはechoを組み立ててルートを登録する。
func New(cfg config.Config, d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(requestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	d.Auth.RegisterRoutes(e, cfg)
	d.Product.RegisterRoutes(e)
	d.Cart.RegisterRoutes(e, cfg)
	d.Wishlist.RegisterRoutes(e, cfg)
	d.Order.RegisterRoutes(e, cfg)
	d.Payment.RegisterRoutes(e, cfg)
	d.AdminOrder.RegisterRoutes(e, cfg)
	d.AdminProduct.RegisterRoutes(e, cfg)
	d.AdminUser.RegisterRoutes(e, cfg)

	return e
}

// Runはサーバーを起動してSIGINT/SIGTERMで猶予付きシャットダウンする。
func Run(e *echo.Echo, port string) error {
	addr := port
	if addr == "" {
		addr = "8080"
	}
	if addr[0] != ':' {
		addr = ":" + addr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	log.Info().Str("addr", addr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// zerologでのアクセスログ
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			res := c.Response()
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return err
		}
	}
}
