package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Cache        CacheConfig
	Basket       BasketConfig
	Checkout     CheckoutConfig
	JWT          JWTConfig
	EmailJS      EmailJSConfig
	Sheets       SheetsConfig
	Notify       NotifyConfig
	Admin        AdminConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHOOL_APP_ENV" required:"true"`
	Port         string `envconfig:"PHOOL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PHOOL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHOOL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"PHOOL_DB_DSN"`
	Driver string `envconfig:"PHOOL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHOOL_DB_HOST"`
	LegacyPort     int    `envconfig:"PHOOL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHOOL_DB_USER"`
	LegacyPassword string `envconfig:"PHOOL_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHOOL_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHOOL_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"PHOOL_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PHOOL_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PHOOL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHOOL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Configured reports whether a remote database has been described at all.
func (db DBConfig) Configured() bool {
	return db.DSN != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"PHOOL_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"PHOOL_SQLITE_PATH" default:"phool.db"`
	AutoMigrate bool   `envconfig:"PHOOL_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PHOOL_REDIS_URL"`
	Address      string        `envconfig:"PHOOL_REDIS_ADDR"`
	Password     string        `envconfig:"PHOOL_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHOOL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHOOL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHOOL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHOOL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHOOL_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PHOOL_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether Redis should back durable local storage.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// StorageConfig describes the S3-compatible bucket that holds product images.
type StorageConfig struct {
	Endpoint       string `envconfig:"PHOOL_STORAGE_ENDPOINT"`
	Region         string `envconfig:"PHOOL_STORAGE_REGION" default:"us-east-1"`
	AccessKey      string `envconfig:"PHOOL_STORAGE_ACCESS_KEY"`
	SecretKey      string `envconfig:"PHOOL_STORAGE_SECRET_KEY"`
	UseSSL         bool   `envconfig:"PHOOL_STORAGE_USE_SSL" default:"true"`
	Bucket         string `envconfig:"PHOOL_STORAGE_BUCKET" default:"product-images"`
	PublicBaseURL  string `envconfig:"PHOOL_STORAGE_PUBLIC_BASE_URL"`
	ImageMaxWidth  int    `envconfig:"PHOOL_STORAGE_IMAGE_MAX_WIDTH" default:"1600"`
	ImageMaxHeight int    `envconfig:"PHOOL_STORAGE_IMAGE_MAX_HEIGHT" default:"1600"`
	ImageQuality   int    `envconfig:"PHOOL_STORAGE_IMAGE_QUALITY" default:"85"`
	MaxUploadMB    int    `envconfig:"PHOOL_STORAGE_MAX_UPLOAD_MB" default:"10"`
}

// Enabled reports whether object storage credentials were supplied.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

type CacheConfig struct {
	ProductsTTL    time.Duration `envconfig:"PHOOL_CACHE_PRODUCTS_TTL" default:"5m"`
	CardsTTL       time.Duration `envconfig:"PHOOL_CACHE_CARDS_TTL" default:"60s"`
	FundraisersTTL time.Duration `envconfig:"PHOOL_CACHE_FUNDRAISERS_TTL" default:"60s"`
	ReviewsTTL     time.Duration `envconfig:"PHOOL_CACHE_REVIEWS_TTL" default:"30s"`
}

type BasketConfig struct {
	StorageKey string `envconfig:"PHOOL_BASKET_STORAGE_KEY" default:"phool_cart_v1"`
	DataDir    string `envconfig:"PHOOL_LOCAL_DATA_DIR" default:"data"`
}

type CheckoutConfig struct {
	GiftWrapCost int64          `envconfig:"PHOOL_GIFT_WRAP_COST" default:"150"`
	PromoCodes   map[string]int `envconfig:"PHOOL_PROMO_CODES"`
	BackupKey    string         `envconfig:"PHOOL_ORDERS_BACKUP_KEY" default:"phool_orders_backup"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHOOL_JWT_SECRET"`
	Issuer            string `envconfig:"PHOOL_JWT_ISSUER" default:"phool"`
	ExpirationMinutes int    `envconfig:"PHOOL_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the admin token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type EmailJSConfig struct {
	Endpoint   string `envconfig:"PHOOL_EMAILJS_ENDPOINT" default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID  string `envconfig:"PHOOL_EMAILJS_SERVICE_ID"`
	TemplateID string `envconfig:"PHOOL_EMAILJS_TEMPLATE_ID"`
	PublicKey  string `envconfig:"PHOOL_EMAILJS_PUBLIC_KEY"`
}

// Enabled reports whether order confirmation emails can be sent.
func (e EmailJSConfig) Enabled() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

type SheetsConfig struct {
	ScriptURL string `envconfig:"PHOOL_GOOGLE_SHEETS_URL"`
}

// Enabled reports whether the Apps Script endpoint was configured.
func (s SheetsConfig) Enabled() bool {
	return s.ScriptURL != "" && !strings.Contains(s.ScriptURL, "YOUR_SCRIPT_ID")
}

type NotifyConfig struct {
	Timeout time.Duration `envconfig:"PHOOL_NOTIFY_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	missing := []string{}
	provided := 0
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
			continue
		}
		provided++
	}

	// nothing described: the remote store runs unconfigured
	if provided == 0 {
		return nil
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

// AdminConfig holds the single dashboard login. The password is stored as an
// argon2id hash produced by cmd/admin-token -hash.
type AdminConfig struct {
	Email        string `envconfig:"PHOOL_ADMIN_EMAIL"`
	PasswordHash string `envconfig:"PHOOL_ADMIN_PASSWORD_HASH"`
}

// Enabled reports whether dashboard login is possible.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.PasswordHash != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PHOOL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PHOOL_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"PHOOL_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"PHOOL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PHOOL_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig throttles the public write endpoints. Counters live in
// Redis when it is configured and in process memory otherwise.
type RateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"PHOOL_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit   int           `envconfig:"PHOOL_RATE_LIMIT_LOGIN_IP" default:"10"`
	ReviewWindow   time.Duration `envconfig:"PHOOL_RATE_LIMIT_REVIEW_WINDOW" default:"1h"`
	ReviewIPLimit  int           `envconfig:"PHOOL_RATE_LIMIT_REVIEW_IP" default:"5"`
	OrderWindow    time.Duration `envconfig:"PHOOL_RATE_LIMIT_ORDER_WINDOW" default:"1h"`
	OrderIPLimit   int           `envconfig:"PHOOL_RATE_LIMIT_ORDER_IP" default:"20"`
	OrderMailLimit int           `envconfig:"PHOOL_RATE_LIMIT_ORDER_EMAIL" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PHOOL_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}
