package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote: entrada de uma quantidade de um item em armazém. O consumo segue a
// ordem de criação (FIFO). Lotes nunca são apagados; quantidade_atual só
// diminui por consumo/ajuste negativo e um lote esgotado nunca é reaberto.
type Lote struct {
	ID                uint `gorm:"primaryKey"`
	ItemID            uint `gorm:"index;not null"`
	Item              ItemEstocavel
	QuantidadeInicial decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	QuantidadeAtual   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// Custo de compra por unidade registrado na entrada.
	CustoUnitario decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
}

// Esgotado indica se o lote já não tem quantidade disponível.
func (l *Lote) Esgotado() bool {
	return !l.QuantidadeAtual.IsPositive()
}
