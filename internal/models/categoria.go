package models

import "time"

// Categoria: agrupador de templates de produto (ex: Portas, Armários).
// Usada apenas para agrupamento na apresentação do orçamento.
type Categoria struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"size:100;not null;unique"`
	Descricao string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
