package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StatusFicha string

const (
	FichaPlanejada   StatusFicha = "planejada"
	FichaEmAndamento StatusFicha = "em_andamento"
	FichaConcluida   StatusFicha = "concluida"
	FichaCancelada   StatusFicha = "cancelada"
)

// FichaConsumoObra: ficha de consumo de uma obra, preenchida ao longo de vários dias.
type FichaConsumoObra struct {
	ID              uint   `gorm:"primaryKey"`
	RefObra         string `gorm:"size:100;not null;unique"`
	DataInicio      time.Time
	PrevisaoEntrega time.Time
	ResponsavelID   uint `gorm:"index;not null"`
	Responsavel     User
	Status          StatusFicha     `gorm:"size:20;not null;default:planejada"`
	ItensConsumidos []ItemConsumido `gorm:"foreignKey:FichaObraID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemConsumido: registro de consumo de material numa ficha de obra.
// Ao ser criado dispara a baixa FIFO no estoque; o custo FIFO apurado na
// baixa fica registrado aqui para os relatórios.
type ItemConsumido struct {
	ID          uint `gorm:"primaryKey"`
	FichaObraID uint `gorm:"index;not null"`
	ItemID      uint `gorm:"index;not null"`
	Item        ItemEstocavel
	DataConsumo time.Time       `gorm:"index;not null"`
	Quantidade  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unidade     string          `gorm:"size:10;not null"`
	// Ex: "HTD-H1000, Cor: Branco"
	DescricaoDetalhada string          `gorm:"size:255"`
	CustoFIFO          decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CreatedAt          time.Time
}
