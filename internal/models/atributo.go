package models

import "time"

type TipoAtributo string

const (
	AtributoNumerico TipoAtributo = "num"
	AtributoTexto    TipoAtributo = "texto"
)

// Atributo: característica configurável de um produto (ex: Altura, Cor).
type Atributo struct {
	ID        uint         `gorm:"primaryKey"`
	Nome      string       `gorm:"size:100;not null"`
	Tipo      TipoAtributo `gorm:"size:10;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
