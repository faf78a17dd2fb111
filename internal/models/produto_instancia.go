package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProdutoInstancia: produto concreto criado a partir de um template, com os
// seus valores de atributo. A quantidade pertence ao item do orçamento, não à instância.
type ProdutoInstancia struct {
	ID          uint `gorm:"primaryKey"`
	TemplateID  uint `gorm:"index;not null"`
	Template    ProdutoTemplate
	Codigo      string                `gorm:"size:100;not null"` // código de exibição gerado
	Atributos   []InstanciaAtributo   `gorm:"foreignKey:InstanciaID;constraint:OnDelete:CASCADE"`
	Componentes []InstanciaComponente `gorm:"foreignKey:InstanciaID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InstanciaComponente: material de estoque que entra na produção de uma
// unidade da instância (ex: 4 dobradiças por porta). A quantidade é por
// unidade; a ficha de produção multiplica pela quantidade do item no orçamento.
type InstanciaComponente struct {
	ID          uint `gorm:"primaryKey"`
	InstanciaID uint `gorm:"index;not null"`
	ItemID      uint `gorm:"index;not null"`
	Item        ItemEstocavel
	Quantidade  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// Ex: "HTD-H1000, Cor: Branco"
	DescricaoDetalhada string `gorm:"size:255"`
	CreatedAt          time.Time
}

// InstanciaAtributo: valor de um atributo para uma instância concreta.
type InstanciaAtributo struct {
	ID                 uint `gorm:"primaryKey"`
	InstanciaID        uint `gorm:"index;not null;uniqueIndex:idx_instancia_atributo"`
	TemplateAtributoID uint `gorm:"not null;uniqueIndex:idx_instancia_atributo"`
	TemplateAtributo   TemplateAtributo
	ValorTexto         string           `gorm:"size:200"`
	ValorNum           *decimal.Decimal `gorm:"type:decimal(12,4)"`
}
