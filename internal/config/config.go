package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	// Pasta onde ficam os modelos Excel (modelo.xlsx, modelo_clausulas.xlsx, ...).
	ExcelTemplateDir string
}

var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stdout)
	return l
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=tdm port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		ExcelTemplateDir: getEnv("EXCEL_TEMPLATE_DIR", "./excel-templates"),
	}

	// Verificações obrigatórias para produção
	if cfg.JWTSecret == "" {
		Log.Fatal("JWT_SECRET não definido; obrigatório para produção")
	}
	if len(cfg.JWTSecret) < 32 {
		Log.Fatal("JWT_SECRET precisa ter pelo menos 32 caracteres")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		Log.Warn("CORS_ALLOWED_ORIGINS usando valor padrão; defina o domínio real em produção")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
