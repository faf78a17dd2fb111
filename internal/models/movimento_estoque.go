package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoMovimento string

const (
	MovimentoEntrada        TipoMovimento = "ENTRADA"  // entrada de lote (compra)
	MovimentoSaida          TipoMovimento = "SAIDA"    // consumo de produção
	MovimentoAjustePositivo TipoMovimento = "AJUSTE_P" // acerto de contagem para cima
	MovimentoAjusteNegativo TipoMovimento = "AJUSTE_N" // acerto de contagem para baixo
)

// MovimentoEstoque: registro imutável de uma variação de quantidade num lote.
// Criado exatamente uma vez, nunca alterado nem apagado; é o razão do estoque.
// A quantidade é sempre a magnitude; o sentido vem do tipo.
type MovimentoEstoque struct {
	ID         uint `gorm:"primaryKey"`
	LoteID     uint `gorm:"index;not null"`
	Lote       Lote
	Quantidade decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Tipo       TipoMovimento   `gorm:"size:10;not null;index"`
	UserID     uint            `gorm:"not null"`
	User       User
	// Item consumido que originou a saída, quando aplicável.
	OrigemConsumoID *uint  `gorm:"index"`
	Observacao      string `gorm:"size:500"`
	CreatedAt       time.Time
}

// ValorAssinado devolve a quantidade com sinal: positiva para entradas e
// ajustes positivos, negativa para saídas e ajustes negativos. A soma dos
// valores assinados dos movimentos de um lote reconstrói quantidade_atual.
func (m *MovimentoEstoque) ValorAssinado() decimal.Decimal {
	switch m.Tipo {
	case MovimentoSaida, MovimentoAjusteNegativo:
		return m.Quantidade.Neg()
	default:
		return m.Quantidade
	}
}
