package main

import (
	"net/http/httptest"
	"strings"
	"testing"

	"tdm-backend/internal/auth"
	"tdm-backend/internal/config"
	"tdm-backend/internal/database"
	"tdm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{
		JWTSecret:   strings.Repeat("s", 32),
		CORSOrigins: "http://localhost:5173",
	}
	return newApp(cfg), cfg
}

func tokenPara(t *testing.T, cfg *config.Config, role models.UserRole) string {
	t.Helper()
	user := models.User{
		Name:         "Teste " + string(role),
		Email:        string(role) + "@tdm.pt",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := auth.GenerateToken(cfg.JWTSecret, &user)
	require.NoError(t, err)
	return token
}

// Cada perfil só passa nos portões das suas rotas; admin passa em todos.
func TestRotasPorPerfil(t *testing.T) {
	app, cfg := newTestApp(t)

	tokens := map[models.UserRole]string{
		models.RoleAdmin:      tokenPara(t, cfg, models.RoleAdmin),
		models.RoleEscritorio: tokenPara(t, cfg, models.RoleEscritorio),
		models.RoleProducao:   tokenPara(t, cfg, models.RoleProducao),
	}

	casos := []struct {
		rota   string
		perfil models.UserRole
		status int
	}{
		// Rotas de escritório
		{"/api/categorias", models.RoleEscritorio, fiber.StatusOK},
		{"/api/orcamentos", models.RoleEscritorio, fiber.StatusOK},
		{"/api/produto-templates", models.RoleEscritorio, fiber.StatusOK},
		{"/api/categorias", models.RoleProducao, fiber.StatusForbidden},
		{"/api/orcamentos", models.RoleProducao, fiber.StatusForbidden},

		// Rotas de produção
		{"/api/postos-trabalho", models.RoleProducao, fiber.StatusOK},
		{"/api/itens-estocaveis", models.RoleProducao, fiber.StatusOK},
		{"/api/fichas-obra", models.RoleProducao, fiber.StatusOK},
		{"/api/postos-trabalho", models.RoleEscritorio, fiber.StatusForbidden},
		{"/api/itens-estocaveis", models.RoleEscritorio, fiber.StatusForbidden},

		// Rotas só de admin
		{"/api/audit-logs", models.RoleEscritorio, fiber.StatusForbidden},
		{"/api/audit-logs", models.RoleProducao, fiber.StatusForbidden},
		{"/api/audit-logs", models.RoleAdmin, fiber.StatusOK},

		// Admin passa em todos os portões
		{"/api/categorias", models.RoleAdmin, fiber.StatusOK},
		{"/api/postos-trabalho", models.RoleAdmin, fiber.StatusOK},
	}

	for _, caso := range casos {
		req := httptest.NewRequest(fiber.MethodGet, caso.rota, nil)
		req.Header.Set("Authorization", "Bearer "+tokens[caso.perfil])

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, caso.status, resp.StatusCode,
			"perfil %s em %s: esperado %d, obtido %d", caso.perfil, caso.rota, caso.status, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}
}

func TestRotasSemToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/categorias", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
