package globals

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port          string
	AppEnv        string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	JwtSecret     string
	GatewayURL    string
	GatewayKey    string
	GatewaySecret string
	StoreName     string
	ThemeColor    string
	UPIPayee      string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		Log.Info("No .env file found; using system environment")
	}

	cfg := Config{
		Port:          getenv("PORT", ":8080"),
		AppEnv:        getenv("APP_ENV", "production"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "outfitorbit"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JwtSecret:     os.Getenv("JWT_SECRET"),
		GatewayURL:    getenv("RAZORPAY_API_URL", "https://api.razorpay.com"),
		GatewayKey:    os.Getenv("RAZORPAY_KEY_ID"),
		GatewaySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		StoreName:     getenv("STORE_NAME", "Outfit Orbit"),
		ThemeColor:    getenv("THEME_COLOR", "#00ACC1"),
		UPIPayee:      getenv("UPI_PAYEE", "outfitorbit@upi"),
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.JwtSecret != "" {
		JwtSecret = []byte(cfg.JwtSecret)
	}
	return cfg
}

// Development reports whether the service runs with APP_ENV=development.
func (c Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// NewLogger builds the zap logger for the given config.
func NewLogger(c Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development() {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
