package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostoTrabalho: posto ou máquina da fábrica (ex: Serra de Bancada, CNC 1).
type PostoTrabalho struct {
	ID        uint            `gorm:"primaryKey"`
	Nome      string          `gorm:"size:100;not null;unique"`
	CustoHora decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Operador: funcionário da produção.
type Operador struct {
	ID        uint   `gorm:"primaryKey"`
	Nome      string `gorm:"size:100;not null;unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessaoTrabalho: utilização de um posto por um operador para uma obra.
type SessaoTrabalho struct {
	ID              uint `gorm:"primaryKey"`
	PostoTrabalhoID uint `gorm:"index;not null"`
	PostoTrabalho   PostoTrabalho
	OperadorID      uint `gorm:"index;not null"`
	Operador        Operador
	FichaObraID     *uint `gorm:"index"`
	FichaObra       *FichaConsumoObra
	Operacao        string    `gorm:"size:500;not null"`
	HoraInicio      time.Time `gorm:"not null"`
	HoraSaida       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
