package models

import "time"

// ItemEstocavel: item físico comprável que existe em estoque.
type ItemEstocavel struct {
	ID          uint `gorm:"primaryKey"`
	CategoriaID uint `gorm:"index;not null;uniqueIndex:idx_categoria_sequencia"`
	Categoria   CategoriaItem
	Nome        string `gorm:"size:255;not null"`
	Descricao   string `gorm:"size:1000"`
	// SKU ou código de barras do fornecedor, quando existe.
	CodigoSKUFornecedor string `gorm:"size:100"`
	// Sequência do item dentro da categoria, atribuída na criação.
	CodigoSequencia uint `gorm:"uniqueIndex:idx_categoria_sequencia"`
	// Código interno completo gerado (ex: PNL-0001).
	CodigoInterno string `gorm:"size:20;unique"`
	Unidade       string `gorm:"size:5;not null;default:un"` // un, m, m2, m3, kg, L
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
