package orcamento

import (
	"testing"

	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemTeste(id, catID, tplID uint, catNome, tplNome string, qtd int, preco string) models.ItemOrcamento {
	return models.ItemOrcamento{
		ID:            id,
		Quantidade:    qtd,
		PrecoUnitario: decimal.RequireFromString(preco),
		Instancia: models.ProdutoInstancia{
			ID:         id + 100,
			TemplateID: tplID,
			Codigo:     tplNome,
			Template: models.ProdutoTemplate{
				ID:          tplID,
				CategoriaID: catID,
				Nome:        tplNome,
				Unidade:     "un",
				Categoria:   models.Categoria{ID: catID, Nome: catNome},
			},
		},
	}
}

func TestAgruparHierarquia(t *testing.T) {
	itens := []models.ItemOrcamento{
		itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00"),
		itemTeste(2, 1, 10, "Portas", "Porta de Interior", 1, "150.00"),
		itemTeste(3, 1, 11, "Portas", "Porta Corta-Fogo", 1, "480.50"),
		itemTeste(4, 2, 20, "Armários", "Armário Embutido", 3, "300.00"),
	}

	visao := Agrupar(itens)

	require.Len(t, visao.Categorias, 2)
	assert.Equal(t, "Portas", visao.Categorias[0].Nome)
	assert.Equal(t, "Armários", visao.Categorias[1].Nome)

	portas := visao.Categorias[0]
	require.Len(t, portas.Templates, 2)
	assert.Equal(t, "Porta de Interior", portas.Templates[0].Nome)
	assert.Len(t, portas.Templates[0].Linhas, 2)
	assert.True(t, portas.Templates[0].Subtotal.Equal(decimal.RequireFromString("390.00")))
	assert.True(t, portas.Subtotal.Equal(decimal.RequireFromString("870.50")))

	armarios := visao.Categorias[1]
	assert.True(t, armarios.Subtotal.Equal(decimal.RequireFromString("900.00")))

	assert.True(t, visao.TotalGeral.Equal(decimal.RequireFromString("1770.50")))
}

// A soma dos totais dos itens tem de bater com o total geral, e cada item
// tem de aparecer exatamente uma vez na visão.
func TestAgruparParticaoPura(t *testing.T) {
	itens := []models.ItemOrcamento{
		itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00"),
		itemTeste(2, 2, 20, "Armários", "Armário Embutido", 1, "99.99"),
		itemTeste(3, 1, 11, "Portas", "Porta Corta-Fogo", 4, "0.25"),
		itemTeste(4, 3, 30, "Rodapés", "Rodapé MDF", 7, "3.10"),
	}

	somaDireta := decimal.Zero
	for i := range itens {
		somaDireta = somaDireta.Add(itens[i].Total())
	}

	visao := Agrupar(itens)
	assert.True(t, visao.TotalGeral.Equal(somaDireta))

	vistos := map[uint]int{}
	for _, cat := range visao.Categorias {
		for _, tpl := range cat.Templates {
			for _, linha := range tpl.Linhas {
				vistos[linha.Item.ID]++
			}
		}
	}
	require.Len(t, vistos, len(itens))
	for id, n := range vistos {
		assert.Equal(t, 1, n, "item %d apareceu %d vezes", id, n)
	}
}

func comComponente(item models.ItemOrcamento, nome, unidade, qtd, desc string) models.ItemOrcamento {
	item.Instancia.Componentes = append(item.Instancia.Componentes, models.InstanciaComponente{
		Item:               models.ItemEstocavel{Nome: nome, Unidade: unidade},
		Quantidade:         decimal.RequireFromString(qtd),
		DescricaoDetalhada: desc,
	})
	return item
}

// A quantidade agregada de um componente é a soma, sobre as instâncias do
// grupo, da quantidade por unidade vezes a quantidade do item no orçamento.
func TestComponentesAgregados(t *testing.T) {
	porta1 := itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00")
	porta1 = comComponente(porta1, "Dobradiça 35mm", "un", "2", "HTD-H1000, Cor: Branco")
	porta1 = comComponente(porta1, "Puxador Inox", "un", "1", "")
	porta2 := itemTeste(2, 1, 10, "Portas", "Porta de Interior", 1, "150.00")
	porta2 = comComponente(porta2, "Dobradiça 35mm", "un", "2", "HTD-H1000, Cor: Branco")

	visao := Agrupar([]models.ItemOrcamento{porta1, porta2})
	comps := ComponentesAgregados(visao.Categorias[0].Templates[0].Linhas)

	require.Len(t, comps, 2)
	assert.Equal(t, "Dobradiça 35mm", comps[0].Nome)
	assert.Equal(t, "HTD-H1000, Cor: Branco", comps[0].Descricao)
	assert.True(t, comps[0].Quantidade.Equal(decimal.NewFromInt(6)), "2x2 + 2x1, obteve %s", comps[0].Quantidade)
	assert.Equal(t, "Puxador Inox", comps[1].Nome)
	assert.True(t, comps[1].Quantidade.Equal(decimal.NewFromInt(2)))
}

// O mesmo material com descrições detalhadas diferentes não se soma.
func TestComponentesAgregadosDescricaoSepara(t *testing.T) {
	item := itemTeste(1, 1, 10, "Portas", "Porta de Interior", 1, "120.00")
	item = comComponente(item, "Dobradiça 35mm", "un", "2", "Cor: Branco")
	item = comComponente(item, "Dobradiça 35mm", "un", "2", "Cor: Preto")

	visao := Agrupar([]models.ItemOrcamento{item})
	comps := ComponentesAgregados(visao.Categorias[0].Templates[0].Linhas)

	require.Len(t, comps, 2)
	assert.True(t, comps[0].Quantidade.Equal(decimal.NewFromInt(2)))
	assert.True(t, comps[1].Quantidade.Equal(decimal.NewFromInt(2)))
}

func TestComponentesAgregadosSemComponentes(t *testing.T) {
	visao := Agrupar([]models.ItemOrcamento{
		itemTeste(1, 1, 10, "Portas", "Porta de Interior", 2, "120.00"),
	})
	assert.Empty(t, ComponentesAgregados(visao.Categorias[0].Templates[0].Linhas))
}

func TestAgruparVazio(t *testing.T) {
	visao := Agrupar(nil)
	assert.Empty(t, visao.Categorias)
	assert.True(t, visao.TotalGeral.IsZero())
}
