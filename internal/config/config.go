/**
 * @description
 * This package handles the configuration management for the oracle-service. It
 * uses the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the oracle-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	EventExchange            string `mapstructure:"EVENT_EXCHANGE"`
	LedgerRPCURL             string `mapstructure:"LEDGER_RPC_URL"`
	LedgerPackageID          string `mapstructure:"LEDGER_PACKAGE_ID"`
	EventPageLimit           int    `mapstructure:"EVENT_PAGE_LIMIT"`
	KYCRateLimitPerMinute    int    `mapstructure:"KYC_RATE_LIMIT_PER_MINUTE"`
	OracleRateLimitPerMinute int    `mapstructure:"ORACLE_RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeoutSeconds    int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	ShutdownTimeoutSeconds   int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "facterra:rate_limit")
	viper.SetDefault("EVENT_EXCHANGE", "facterra.events")
	viper.SetDefault("LEDGER_RPC_URL", "https://fullnode.testnet.sui.io:443")
	viper.SetDefault("EVENT_PAGE_LIMIT", 50)
	viper.SetDefault("KYC_RATE_LIMIT_PER_MINUTE", 5)
	viper.SetDefault("ORACLE_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "ORACLE_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EVENT_EXCHANGE")
	_ = viper.BindEnv("LEDGER_RPC_URL", "LEDGER_RPC_URL", "SUI_RPC_URL")
	_ = viper.BindEnv("LEDGER_PACKAGE_ID", "LEDGER_PACKAGE_ID", "SUI_PACKAGE_ID")
	_ = viper.BindEnv("EVENT_PAGE_LIMIT")
	_ = viper.BindEnv("KYC_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("ORACLE_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("REQUEST_TIMEOUT_SECONDS")
	_ = viper.BindEnv("SHUTDOWN_TIMEOUT_SECONDS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Platform-provided PORT (e.g., Railway/Render) takes precedence.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.DatabaseURL = strings.TrimSpace(config.DatabaseURL)
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)
	config.LedgerRPCURL = strings.TrimSpace(config.LedgerRPCURL)
	config.LedgerPackageID = strings.TrimSpace(config.LedgerPackageID)

	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "facterra:rate_limit"
	}
	config.EventExchange = strings.TrimSpace(config.EventExchange)
	if config.EventExchange == "" {
		config.EventExchange = "facterra.events"
	}

	if config.EventPageLimit <= 0 {
		config.EventPageLimit = 50
	}
	if config.KYCRateLimitPerMinute <= 0 {
		config.KYCRateLimitPerMinute = 5
	}
	if config.OracleRateLimitPerMinute <= 0 {
		config.OracleRateLimitPerMinute = 10
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = 60
	}
	if config.ShutdownTimeoutSeconds <= 0 {
		config.ShutdownTimeoutSeconds = 10
	}

	return
}
