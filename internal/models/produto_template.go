package models

import "time"

// ProdutoTemplate: molde de produto dentro de uma categoria. Define os
// atributos que as instâncias podem ter e o padrão de descrição usado para
// gerar o nome legível da instância (ex: "Porta {{ acabamento }} ({{ altura }}x{{ largura }})mm").
type ProdutoTemplate struct {
	ID          uint `gorm:"primaryKey"`
	CategoriaID uint `gorm:"index;not null"`
	Categoria   Categoria
	Nome        string `gorm:"size:200;not null"`
	// Padrão de descrição da instância. Vazio = descrição gerada a partir dos atributos.
	PadraoDescricao string             `gorm:"size:500"`
	Unidade         string             `gorm:"size:20"` // un, m2, ml...
	Atributos       []TemplateAtributo `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TemplateAtributo: ligação template -> atributo, com ordem de exibição.
type TemplateAtributo struct {
	ID          uint `gorm:"primaryKey"`
	TemplateID  uint `gorm:"index;not null;uniqueIndex:idx_template_atributo"`
	AtributoID  uint `gorm:"not null;uniqueIndex:idx_template_atributo"`
	Atributo    Atributo
	Obrigatorio bool `gorm:"not null;default:true"`
	Ordem       int  `gorm:"not null;default:0"`
}
