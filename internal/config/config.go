package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret string // JWT署名シークレット

	GoEnv   string // dev/prod
	SiteURL string // 決済のreturn_urlなどで使う

	//送料（小計が閾値以上なら無料）
	ShippingFlatFee       float64
	FreeShippingThreshold float64

	//Cashfree決済
	CashfreeMode      string // SANDBOX/PROD
	CashfreeAppID     string
	CashfreeSecretKey string

	//メール（Zoho API + SMTPフォールバック）
	ZohoAPIBase      string
	ZohoAccountID    string
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoFromAddress  string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	EmailFromName    string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:   os.Getenv("GO_ENV"),
		SiteURL: getenv("SITE_URL", "http://localhost:8080"),

		ShippingFlatFee:       getenvFloat("SHIPPING_FLAT_FEE", 50),
		FreeShippingThreshold: getenvFloat("FREE_SHIPPING_ABOVE", 500),

		CashfreeMode:      getenv("CASHFREE_MODE", "SANDBOX"),
		CashfreeAppID:     os.Getenv("CASHFREE_APP_ID"),
		CashfreeSecretKey: os.Getenv("CASHFREE_SECRET_KEY"),

		ZohoAPIBase:      getenv("ZOHO_MAIL_API", "https://mail.zoho.com/api/accounts/"),
		ZohoAccountID:    os.Getenv("ZOHO_ACCOUNT_ID"),
		ZohoClientID:     os.Getenv("ZOHO_CLIENT_ID"),
		ZohoClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
		ZohoRefreshToken: os.Getenv("ZOHO_REFRESH_TOKEN"),
		ZohoFromAddress:  os.Getenv("ZOHO_EMAIL"),
		SMTPHost:         getenv("EMAIL_HOST", "smtp.zoho.com"),
		SMTPPort:         int(getenvFloat("EMAIL_PORT", 587)),
		SMTPUser:         os.Getenv("EMAIL_USER"),
		SMTPPassword:     os.Getenv("EMAIL_PASS"),
		EmailFromName:    getenv("EMAIL_FROM_NAME", "ShopHub"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.CashfreeMode != "SANDBOX" && cfg.CashfreeMode != "PROD" {
		return Config{}, fmt.Errorf("CASHFREE_MODE must be SANDBOX or PROD")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
