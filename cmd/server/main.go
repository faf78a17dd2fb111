package main

import (
	"strings"

	"tdm-backend/internal/audit"
	"tdm-backend/internal/auth"
	"tdm-backend/internal/config"
	"tdm-backend/internal/consumos"
	"tdm-backend/internal/database"
	"tdm-backend/internal/estoque"
	"tdm-backend/internal/models"
	"tdm-backend/internal/orcamento"
	"tdm-backend/internal/produtos"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			config.Log.WithError(err).Error("erro inesperado")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado no servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Portões por perfil, aplicados rota a rota. As rotas dos três perfis
	// partilham o prefixo /api, então um Use num grupo de prefixo vazio
	// valeria para todas elas.
	somenteAdmin := auth.RequireRole(models.RoleAdmin)
	escritorio := auth.RequireRole(models.RoleAdmin, models.RoleEscritorio)
	producao := auth.RequireRole(models.RoleAdmin, models.RoleProducao)

	// Administração
	protected.Post("/users", somenteAdmin, auth.CreateUserHandler())
	protected.Get("/audit-logs", somenteAdmin, audit.ListAuditLogsHandler())

	// Catálogo de produtos e orçamentação (escritório)
	protected.Get("/categorias", escritorio, produtos.ListCategoriasHandler())
	protected.Post("/categorias", escritorio, produtos.CreateCategoriaHandler())
	protected.Put("/categorias/:id", escritorio, produtos.UpdateCategoriaHandler())
	protected.Delete("/categorias/:id", escritorio, produtos.DeleteCategoriaHandler())

	protected.Get("/atributos", escritorio, produtos.ListAtributosHandler())
	protected.Post("/atributos", escritorio, produtos.CreateAtributoHandler())
	protected.Delete("/atributos/:id", escritorio, produtos.DeleteAtributoHandler())

	protected.Get("/produto-templates", escritorio, produtos.ListProdutoTemplatesHandler())
	protected.Get("/produto-templates/:id", escritorio, produtos.GetProdutoTemplateHandler())
	protected.Post("/produto-templates", escritorio, produtos.CreateProdutoTemplateHandler())
	protected.Put("/produto-templates/:id", escritorio, produtos.UpdateProdutoTemplateHandler())
	protected.Delete("/produto-templates/:id", escritorio, produtos.DeleteProdutoTemplateHandler())

	protected.Get("/produto-instancias", escritorio, produtos.ListProdutoInstanciasHandler())
	protected.Get("/produto-instancias/:id", escritorio, produtos.GetProdutoInstanciaHandler())
	protected.Post("/produto-instancias", escritorio, produtos.CreateProdutoInstanciaHandler())
	protected.Put("/produto-instancias/:id", escritorio, produtos.UpdateProdutoInstanciaHandler())
	protected.Delete("/produto-instancias/:id", escritorio, produtos.DeleteProdutoInstanciaHandler())
	protected.Post("/produto-instancias/:id/componentes", escritorio, produtos.AddComponenteInstanciaHandler())
	protected.Delete("/produto-instancias/:id/componentes/:compID", escritorio, produtos.DeleteComponenteInstanciaHandler())

	// Orçamentos
	protected.Get("/orcamentos", escritorio, orcamento.ListOrcamentosHandler())
	protected.Get("/orcamentos/:id", escritorio, orcamento.GetOrcamentoHandler())
	protected.Post("/orcamentos", escritorio, orcamento.CreateOrcamentoHandler())
	protected.Put("/orcamentos/:id", escritorio, orcamento.UpdateOrcamentoHandler())
	protected.Delete("/orcamentos/:id", escritorio, orcamento.DeleteOrcamentoHandler())
	protected.Post("/orcamentos/:id/itens", escritorio, orcamento.AddItemOrcamentoHandler())
	protected.Put("/orcamentos/:id/itens/:itemID", escritorio, orcamento.UpdateItemOrcamentoHandler())
	protected.Delete("/orcamentos/:id/itens/:itemID", escritorio, orcamento.DeleteItemOrcamentoHandler())
	protected.Post("/orcamentos/:id/versoes", escritorio, orcamento.VersionarOrcamentoHandler())
	protected.Get("/orcamentos/:id/excel", escritorio, orcamento.ExportOrcamentoExcelHandler(cfg))
	protected.Get("/orcamentos/:id/ficha-producao", escritorio, orcamento.ExportFichaProducaoHandler(cfg))

	// Estoque e consumos (produção)
	protected.Get("/categorias-item", producao, estoque.ListCategoriasItemHandler())
	protected.Post("/categorias-item", producao, estoque.CreateCategoriaItemHandler())
	protected.Put("/categorias-item/:id", producao, estoque.UpdateCategoriaItemHandler())
	protected.Delete("/categorias-item/:id", producao, estoque.DeleteCategoriaItemHandler())

	protected.Get("/itens-estocaveis", producao, estoque.ListItensEstocaveisHandler())
	protected.Get("/itens-estocaveis/:id", producao, estoque.GetItemEstocavelHandler())
	protected.Post("/itens-estocaveis", producao, estoque.CreateItemEstocavelHandler())
	protected.Put("/itens-estocaveis/:id", producao, estoque.UpdateItemEstocavelHandler())
	protected.Delete("/itens-estocaveis/:id", producao, estoque.DeleteItemEstocavelHandler())

	protected.Post("/itens-estocaveis/:id/entradas", producao, estoque.RegistrarEntradaHandler())
	protected.Get("/itens-estocaveis/:id/lotes", producao, estoque.ListLotesHandler())
	protected.Post("/itens-estocaveis/:id/ajuste", producao, estoque.AjustarItemHandler())
	protected.Post("/lotes/:id/ajuste", producao, estoque.AjustarLoteHandler())
	protected.Get("/lotes/:id/conferencia", producao, estoque.ConferirLoteHandler())
	protected.Get("/movimentos-estoque", producao, estoque.ListMovimentosHandler())

	protected.Get("/fichas-obra", producao, consumos.ListFichasObraHandler())
	protected.Get("/fichas-obra/:id", producao, consumos.GetFichaObraHandler())
	protected.Post("/fichas-obra", producao, consumos.CreateFichaObraHandler())
	protected.Put("/fichas-obra/:id", producao, consumos.UpdateFichaObraHandler())
	protected.Post("/fichas-obra/:id/consumos", producao, consumos.RegistrarConsumoHandler())
	protected.Delete("/fichas-obra/:id/consumos/:consumoID", producao, consumos.DeleteConsumoHandler())

	protected.Get("/postos-trabalho", producao, consumos.ListPostosHandler())
	protected.Post("/postos-trabalho", producao, consumos.CreatePostoHandler())
	protected.Put("/postos-trabalho/:id", producao, consumos.UpdatePostoHandler())
	protected.Delete("/postos-trabalho/:id", producao, consumos.DeletePostoHandler())

	protected.Get("/operadores", producao, consumos.ListOperadoresHandler())
	protected.Post("/operadores", producao, consumos.CreateOperadorHandler())
	protected.Delete("/operadores/:id", producao, consumos.DeleteOperadorHandler())

	protected.Get("/sessoes-trabalho", producao, consumos.ListSessoesHandler())
	protected.Post("/sessoes-trabalho", producao, consumos.IniciarSessaoHandler())
	protected.Put("/sessoes-trabalho/:id/fechar", producao, consumos.FecharSessaoHandler())

	protected.Get("/relatorios/consumo-material", producao, consumos.RelatorioConsumoMaterialHandler())
	protected.Get("/relatorios/consumo-material/excel", producao, consumos.ExportConsumoMaterialExcelHandler(cfg))
	protected.Get("/relatorios/utilizacao-maquina", producao, consumos.RelatorioUtilizacaoMaquinaHandler())
	protected.Get("/relatorios/utilizacao-maquina/excel", producao, consumos.ExportUtilizacaoMaquinaExcelHandler(cfg))
	protected.Get("/relatorios/kpis", producao, consumos.KPIsHandler())

	return app
}

func main() {
	if err := godotenv.Load(); err != nil {
		config.Log.Info("arquivo .env não encontrado; usando variáveis de ambiente")
	}

	cfg := config.Load()
	database.Init(cfg)

	app := newApp(cfg)

	config.Log.WithField("port", cfg.HTTPPort).Info("servidor iniciado")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		config.Log.WithError(err).Fatal("servidor encerrou com erro")
	}
}
