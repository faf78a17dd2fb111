package orcamento

import (
	"tdm-backend/internal/models"
	"tdm-backend/internal/produtos"

	"github.com/shopspring/decimal"
)

// Agrupamento hierárquico do orçamento: categoria -> template -> instâncias,
// com subtotais por nível e total geral. É uma partição pura dos itens de
// entrada; nenhum item é descartado nem duplicado. A ordem dos grupos segue
// a primeira aparição nos itens.

type LinhaItem struct {
	Item      *models.ItemOrcamento
	Descricao string
	Total     decimal.Decimal
}

type GrupoTemplate struct {
	TemplateID uint
	Nome       string
	Unidade    string
	Linhas     []LinhaItem
	Subtotal   decimal.Decimal
}

type GrupoCategoria struct {
	CategoriaID uint
	Nome        string
	Templates   []*GrupoTemplate
	Subtotal    decimal.Decimal
}

type VisaoAgrupada struct {
	Categorias []*GrupoCategoria
	TotalGeral decimal.Decimal
}

type ComponenteAgregado struct {
	Nome       string
	Unidade    string
	Descricao  string
	Quantidade decimal.Decimal
}

// ComponentesAgregados soma, por material, os componentes de todas as
// instâncias de um grupo de template. A quantidade de cada componente é por
// unidade do produto, então multiplica pela quantidade do item no orçamento.
// A ordem segue a primeira aparição.
func ComponentesAgregados(linhas []LinhaItem) []ComponenteAgregado {
	type chave struct {
		nome      string
		unidade   string
		descricao string
	}
	porChave := map[chave]*ComponenteAgregado{}
	var ordem []chave

	for _, ln := range linhas {
		qtdItem := decimal.NewFromInt(int64(ln.Item.Quantidade))
		for i := range ln.Item.Instancia.Componentes {
			comp := &ln.Item.Instancia.Componentes[i]
			k := chave{nome: comp.Item.Nome, unidade: comp.Item.Unidade, descricao: comp.DescricaoDetalhada}
			agg, ok := porChave[k]
			if !ok {
				agg = &ComponenteAgregado{
					Nome:       k.nome,
					Unidade:    k.unidade,
					Descricao:  k.descricao,
					Quantidade: decimal.Zero,
				}
				porChave[k] = agg
				ordem = append(ordem, k)
			}
			agg.Quantidade = agg.Quantidade.Add(comp.Quantidade.Mul(qtdItem))
		}
	}

	res := make([]ComponenteAgregado, 0, len(ordem))
	for _, k := range ordem {
		res = append(res, *porChave[k])
	}
	return res
}

// Agrupar monta a visão hierárquica dos itens. Os itens têm de vir com a
// cadeia Instancia -> Template -> Categoria carregada.
func Agrupar(itens []models.ItemOrcamento) *VisaoAgrupada {
	visao := &VisaoAgrupada{TotalGeral: decimal.Zero}
	categorias := map[uint]*GrupoCategoria{}
	templates := map[uint]*GrupoTemplate{}

	for i := range itens {
		item := &itens[i]
		tpl := &item.Instancia.Template
		cat := &tpl.Categoria

		grupoCat, ok := categorias[cat.ID]
		if !ok {
			grupoCat = &GrupoCategoria{
				CategoriaID: cat.ID,
				Nome:        cat.Nome,
				Subtotal:    decimal.Zero,
			}
			categorias[cat.ID] = grupoCat
			visao.Categorias = append(visao.Categorias, grupoCat)
		}

		grupoTpl, ok := templates[tpl.ID]
		if !ok {
			grupoTpl = &GrupoTemplate{
				TemplateID: tpl.ID,
				Nome:       tpl.Nome,
				Unidade:    tpl.Unidade,
				Subtotal:   decimal.Zero,
			}
			templates[tpl.ID] = grupoTpl
			grupoCat.Templates = append(grupoCat.Templates, grupoTpl)
		}

		total := item.Total()
		grupoTpl.Linhas = append(grupoTpl.Linhas, LinhaItem{
			Item:      item,
			Descricao: produtos.DescricaoInstancia(&item.Instancia),
			Total:     total,
		})
		grupoTpl.Subtotal = grupoTpl.Subtotal.Add(total)
		grupoCat.Subtotal = grupoCat.Subtotal.Add(total)
		visao.TotalGeral = visao.TotalGeral.Add(total)
	}

	return visao
}
