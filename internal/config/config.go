package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	LogLevel    int               `env:"LOG_LEVEL" envDefault:"0"`
	Database    DatabaseConfig    `envPrefix:"DB_"`
	Server      ServerConfig      `envPrefix:"SERVER_"`
	App         AppConfig
	Leaderboard LeaderboardConfig `envPrefix:"LEADERBOARD_"`
	Dashboard   DashboardConfig   `envPrefix:"DASHBOARD_"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"NAME" envDefault:"referral_rewards"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string `env:"JWT_SECRET"`
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	FrontendURL    string `env:"FRONTEND_URL"`
	RewardPerPoint string `env:"REWARD_PER_POINT" envDefault:"0.5"`
	QRSize         int    `env:"QR_SIZE" envDefault:"256"`
}

// LeaderboardConfig holds leaderboard cache settings
type LeaderboardConfig struct {
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1m"`
}

// DashboardConfig holds dashboard list sizes
type DashboardConfig struct {
	TopLimit    int `env:"TOP_LIMIT" envDefault:"5"`
	RecentLimit int `env:"RECENT_LIMIT" envDefault:"10"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return Parse()
}

// Parse reads the process environment into a Config and validates it
func Parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if _, err := config.RewardPerPoint(); err != nil {
		return nil, err
	}

	if config.App.QRSize <= 0 {
		return nil, fmt.Errorf("QR_SIZE must be positive, got %d", config.App.QRSize)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// RewardPerPoint returns the monetary value of a single point
func (c *Config) RewardPerPoint() (decimal.Decimal, error) {
	v, err := decimal.NewFromString(c.App.RewardPerPoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid REWARD_PER_POINT %q: %w", c.App.RewardPerPoint, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("REWARD_PER_POINT must not be negative")
	}
	return v, nil
}
