package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	Port string

	// artefatos do modelo (pesos, scalers, mapeamentos)
	ModelsDir string

	// "global" ou "legacy"
	ForecastStrategy string
	Horizon          int
	ReferenceYear    int

	// CSVs do SINAN para o cmd/joindata
	CasesDir string
}

func Load() (*Config, error) {
	// carrega .env em dev
	_ = godotenv.Load("../.env.local")

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),
		DBTimezone: os.Getenv("DB_TIMEZONE"),

		Port:             os.Getenv("PORT"),
		ModelsDir:        os.Getenv("MODELS_DIR"),
		ForecastStrategy: os.Getenv("FORECAST_STRATEGY"),
		CasesDir:         os.Getenv("CASES_DIR"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
	cfg.Horizon, _ = strconv.Atoi(os.Getenv("FORECAST_HORIZON"))
	cfg.ReferenceYear, _ = strconv.Atoi(os.Getenv("FORECAST_REFERENCE_YEAR"))

	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("Variaveis de ambiente de DB não configuradas")
	}
	return cfg, nil
}

// DSN monta a connection string usada tanto pelo gorm quanto pelo pgxpool.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}
