package database

import (
	"tdm-backend/internal/config"
	"tdm-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		config.Log.Fatalf("Não foi possível conectar ao banco de dados: %v", err)
	}

	if err := Migrate(DB); err != nil {
		config.Log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	config.Log.Info("Conexão com o banco estabelecida. Migração concluída.")
}

// Migrate aplica o esquema. Extraída para as suítes de teste poderem migrar
// um banco sqlite em memória.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		// Catálogo
		&models.Categoria{},
		&models.Atributo{},
		&models.ProdutoTemplate{},
		&models.TemplateAtributo{},
		&models.ProdutoInstancia{},
		&models.InstanciaAtributo{},
		&models.InstanciaComponente{},
		// Orçamentos
		&models.Orcamento{},
		&models.ItemOrcamento{},
		// Estoque
		&models.CategoriaItem{},
		&models.ItemEstocavel{},
		&models.Lote{},
		&models.MovimentoEstoque{},
		// Consumos
		&models.FichaConsumoObra{},
		&models.ItemConsumido{},
		&models.PostoTrabalho{},
		&models.Operador{},
		&models.SessaoTrabalho{},
		// Auditoria
		&models.AuditLog{},
	)
}
