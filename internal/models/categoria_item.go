package models

import "time"

// CategoriaItem: categoria de itens estocáveis (ex: Ferragens, Painéis).
// O código é o prefixo usado na geração do código interno dos itens (ex: PNL).
type CategoriaItem struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"size:100;not null"`
	Codigo    string `gorm:"size:10;not null;unique"`
	ParentID  *uint  `gorm:"index"`
	Parent    *CategoriaItem
	CreatedAt time.Time
	UpdatedAt time.Time
}
