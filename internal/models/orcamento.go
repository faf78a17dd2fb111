package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orcamento: orçamento versionado composto por itens. Uma nova versão é uma
// nova linha independente ligada pelo mesmo código legado base.
type Orcamento struct {
	ID           uint   `gorm:"primaryKey"`
	CodigoLegado string `gorm:"size:100;not null;uniqueIndex:idx_codigo_versao"`
	Versao       uint   `gorm:"not null;default:1;uniqueIndex:idx_codigo_versao"`
	VersaoBase   uint   `gorm:"not null;default:1"`
	UserID       uint   `gorm:"index;not null"`
	User         User

	// Dados do cliente extraídos do código legado.
	NomeCliente     string `gorm:"size:255"`
	TipoCliente     string `gorm:"size:10"` // EP = empresa, PC = particular
	CodigoCliente   string `gorm:"size:50"`
	CodigoAgente    string `gorm:"size:50"`
	DataSolicitacao *time.Time

	Itens     []ItemOrcamento `gorm:"foreignKey:OrcamentoID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemOrcamento: uma linha do orçamento, referenciando uma instância de produto.
// O total nunca é persistido; é sempre calculado na leitura.
type ItemOrcamento struct {
	ID            uint `gorm:"primaryKey"`
	OrcamentoID   uint `gorm:"index;not null"`
	InstanciaID   uint `gorm:"index;not null"`
	Instancia     ProdutoInstancia
	Quantidade    int             `gorm:"not null"` // >= 1
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total devolve quantidade × preço unitário.
func (i *ItemOrcamento) Total() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}
