// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Shopify  ShopifyConfig
	GLS      GLSConfig
	Sheets   SheetsConfig
	Storage  StorageConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

type ShopifyConfig struct {
	ShopDomain  string
	APIVersion  string
	AccessToken string
	// Orders carrying any of these tags count as backordered.
	BackorderTags []string
}

type GLSConfig struct {
	BaseURL      string
	SOAPEndpoint string
	Username     string
	Password     string
	ClientCode   string
	UID          string
	CookieFile   string
	// Sender record stamped on every outbound shipment.
	SenderName    string
	SenderAddress string
	SenderCity    string
	SenderZip     string
	SenderPhone   string
}

type SheetsConfig struct {
	SpreadsheetID   string
	WarehouseSheet  string
	InboundSheet    string
	CredentialsJSON string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ForecastConfig holds the inventory planning constants. All values are
// supplied at startup and never change at runtime.
type ForecastConfig struct {
	AnalysisWindowDays int
	TargetStockoutDays int
	TransitDays        int
	CriticalDays       int
	// IncludeCarrierReturns merges the GLS returned-shipment feed into the
	// sales history. There is no reconciliation key between Shopify and GLS,
	// so turning this on can double-count a sale recorded in both systems.
	IncludeCarrierReturns bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "adibodyes")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
		viper.SetDefault("SHOPIFY_SHOP_DOMAIN", "db806d-07.myshopify.com")
		viper.SetDefault("SHOPIFY_API_VERSION", "2024-04")
		viper.SetDefault("SHOPIFY_BACKORDER_TAGS", []string{"MANCA MODELLO", "MANCA MODELLO 2"})
		viper.SetDefault("GLS_BASE_URL", "https://extranet.gls-spain.es")
		viper.SetDefault("GLS_SOAP_ENDPOINT", "https://wsclientes.asmred.com/b2b.asmx")
		viper.SetDefault("GLS_COOKIE_FILE", "gls_cookies.json")
		viper.SetDefault("GLS_SENDER_NAME", "AdiBody ES")
		viper.SetDefault("GLS_SENDER_ADDRESS", "Calle Pino Siberia 28 (ENVIALIA)")
		viper.SetDefault("GLS_SENDER_CITY", "Sevilla")
		viper.SetDefault("GLS_SENDER_ZIP", "41016")
		viper.SetDefault("GLS_SENDER_PHONE", "954981710")
		viper.SetDefault("SHEET_WAREHOUSE", "Magazzino")
		viper.SetDefault("SHEET_INBOUND", "InArrivo")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("FORECAST_ANALYSIS_WINDOW_DAYS", 10)
		viper.SetDefault("FORECAST_TARGET_STOCKOUT_DAYS", 40)
		viper.SetDefault("FORECAST_TRANSIT_DAYS", 21)
		viper.SetDefault("FORECAST_CRITICAL_DAYS", 21)
		viper.SetDefault("FORECAST_INCLUDE_CARRIER_RETURNS", false)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Shopify: ShopifyConfig{
				ShopDomain:    viper.GetString("SHOPIFY_SHOP_DOMAIN"),
				APIVersion:    viper.GetString("SHOPIFY_API_VERSION"),
				AccessToken:   viper.GetString("SHOPIFY_ACCESS_TOKEN"),
				BackorderTags: viper.GetStringSlice("SHOPIFY_BACKORDER_TAGS"),
			},
			GLS: GLSConfig{
				BaseURL:       viper.GetString("GLS_BASE_URL"),
				SOAPEndpoint:  viper.GetString("GLS_SOAP_ENDPOINT"),
				Username:      viper.GetString("GLS_USERNAME"),
				Password:      viper.GetString("GLS_PASSWORD"),
				ClientCode:    viper.GetString("GLS_CLIENT_CODE"),
				UID:           viper.GetString("GLS_UID"),
				CookieFile:    viper.GetString("GLS_COOKIE_FILE"),
				SenderName:    viper.GetString("GLS_SENDER_NAME"),
				SenderAddress: viper.GetString("GLS_SENDER_ADDRESS"),
				SenderCity:    viper.GetString("GLS_SENDER_CITY"),
				SenderZip:     viper.GetString("GLS_SENDER_ZIP"),
				SenderPhone:   viper.GetString("GLS_SENDER_PHONE"),
			},
			Sheets: SheetsConfig{
				SpreadsheetID:   viper.GetString("GOOGLE_SHEET_ID"),
				WarehouseSheet:  viper.GetString("SHEET_WAREHOUSE"),
				InboundSheet:    viper.GetString("SHEET_INBOUND"),
				CredentialsJSON: viper.GetString("GOOGLE_CREDENTIALS_JSON"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Forecast: ForecastConfig{
				AnalysisWindowDays:    viper.GetInt("FORECAST_ANALYSIS_WINDOW_DAYS"),
				TargetStockoutDays:    viper.GetInt("FORECAST_TARGET_STOCKOUT_DAYS"),
				TransitDays:           viper.GetInt("FORECAST_TRANSIT_DAYS"),
				CriticalDays:          viper.GetInt("FORECAST_CRITICAL_DAYS"),
				IncludeCarrierReturns: viper.GetBool("FORECAST_INCLUDE_CARRIER_RETURNS"),
			},
		}
	})

	return instance
}
