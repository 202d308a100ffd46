package config

import (
	"strings"

	"erp-backend/internal/constants"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseDriver      string // postgres | sqlite
	DatabaseURL         string
	SQLitePath          string
	AutoMigrate         bool
	RedisURL            string // optional; enables the Redis quotation lock and health traffic stats
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	ApproverRoles       []string // roles allowed to approve or reject quotations
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SQLITE_PATH", "quotations.db")
	viper.SetDefault("AUTO_MIGRATE", true)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = viper.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		switch env {
		case "production":
			dbURL = viper.GetString("DATABASE_URL_PROD")
		case "test":
			dbURL = viper.GetString("DATABASE_URL_TEST")
		default:
			dbURL = viper.GetString("DATABASE_URL_DEV")
		}
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseDriver:      databaseDriver(viper.GetString("DATABASE_DRIVER"), dbURL),
		DatabaseURL:         dbURL,
		SQLitePath:          viper.GetString("SQLITE_PATH"),
		AutoMigrate:         viper.GetBool("AUTO_MIGRATE"),
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		ApproverRoles:       splitList(viper.GetString("APPROVER_ROLES"), constants.PermissionRoles[constants.ApproveQuotation]),
	}, nil
}

// databaseDriver falls back to sqlite when no Postgres URL is configured.
func databaseDriver(explicit, dbURL string) string {
	d := strings.ToLower(strings.TrimSpace(explicit))
	if d == "postgres" || d == "sqlite" {
		return d
	}
	if dbURL == "" {
		return "sqlite"
	}
	return "postgres"
}

func splitList(s string, def []string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
