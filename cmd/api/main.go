package main

import (
	"context"
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/gateway/cashfree"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/mailer"
	"app/internal/server"
	"app/internal/settings"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	if cfg.GoEnv == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.CartItem{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	settingRepo := infraRepo.NewSettingGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//サイト設定は起動時に読み込んでキャッシュ
	settingCache := settings.NewCache(settingRepo)
	if err := settingCache.Refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("settings load failed, using defaults")
	}

	//メール（Zoho API + SMTPフォールバック）
	mail := mailer.NewZohoMailer(cfg)

	//Cashfree
	cfClient := cashfree.NewClient(cfg)

	//usecaseに渡す部品
	clock := auth.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, mail, clock)
	verifyOTPUC := auth.NewVerifyOTPUsecase(userRepo, mail, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)

	productUC := usecase.NewProductUsecase(productRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, cfg.ShippingFlatFee, cfg.FreeShippingThreshold)
	orderUC := usecase.NewOrderUsecase(txManager, mail, cfg.ShippingFlatFee, cfg.FreeShippingThreshold)
	paymentUC := usecase.NewPaymentUsecase(orderRepo, cfClient, mail, cfg.SiteURL)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, paymentUC)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo)

	//Handler生成
	deps := server.Deps{
		Auth:         handler.NewAuthHandler(registerUC, verifyOTPUC, loginUC, userRepo),
		Product:      handler.NewProductHandler(productUC, settingCache),
		Cart:         handler.NewCartHandler(cartUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Order:        handler.NewOrderHandler(orderUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC),
	}

	//Server起動
	e := server.New(cfg, deps)
	if err := server.Run(e, cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
