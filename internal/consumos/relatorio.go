package consumos

import (
	"sort"

	"tdm-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Relatórios de consumo e produção: agregações puras sobre registros já
// carregados, usadas pelas páginas de relatório e pelas exportações Excel.

type ConsumoAgregado struct {
	ItemNome           string          `json:"item_nome"`
	CodigoInterno      string          `json:"codigo_interno"`
	DescricaoDetalhada string          `json:"descricao_detalhada"`
	Unidade            string          `json:"unidade"`
	TotalQuantidade    decimal.Decimal `json:"total_quantidade"`
	CustoTotal         decimal.Decimal `json:"custo_total"`
}

// AgregarConsumos agrupa os itens consumidos por (item, descrição detalhada,
// unidade), somando quantidades e custos FIFO. Ordena por nome do item.
func AgregarConsumos(itens []models.ItemConsumido) []ConsumoAgregado {
	type chave struct {
		itemID    uint
		descricao string
		unidade   string
	}
	porChave := map[chave]*ConsumoAgregado{}
	var ordem []chave

	for i := range itens {
		ic := &itens[i]
		k := chave{itemID: ic.ItemID, descricao: ic.DescricaoDetalhada, unidade: ic.Unidade}
		agg, ok := porChave[k]
		if !ok {
			agg = &ConsumoAgregado{
				ItemNome:           ic.Item.Nome,
				CodigoInterno:      ic.Item.CodigoInterno,
				DescricaoDetalhada: ic.DescricaoDetalhada,
				Unidade:            ic.Unidade,
				TotalQuantidade:    decimal.Zero,
				CustoTotal:         decimal.Zero,
			}
			porChave[k] = agg
			ordem = append(ordem, k)
		}
		agg.TotalQuantidade = agg.TotalQuantidade.Add(ic.Quantidade)
		agg.CustoTotal = agg.CustoTotal.Add(ic.CustoFIFO)
	}

	res := make([]ConsumoAgregado, 0, len(ordem))
	for _, k := range ordem {
		res = append(res, *porChave[k])
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].ItemNome < res[j].ItemNome })
	return res
}

type TempoPosto struct {
	PostoID   uint            `json:"posto_id"`
	Nome      string          `json:"nome"`
	Horas     float64         `json:"horas"`
	CustoHora decimal.Decimal `json:"custo_hora"`
	Custo     decimal.Decimal `json:"custo"`
}

type TempoOperador struct {
	OperadorID uint    `json:"operador_id"`
	Nome       string  `json:"nome"`
	Horas      float64 `json:"horas"`
}

type OperacaoKPI struct {
	Operacao     string  `json:"operacao"`
	MediaMinutos float64 `json:"media_minutos"`
	Execucoes    int     `json:"execucoes"`
}

type ResumoKPI struct {
	HorasTotais      float64         `json:"horas_totais"`
	CustoMaoDeObra   decimal.Decimal `json:"custo_mao_de_obra"`
	PorPosto         []TempoPosto    `json:"por_posto"`
	PorOperador      []TempoOperador `json:"por_operador"`
	MediaPorOperacao []OperacaoKPI   `json:"media_por_operacao"`
}

// Só sessões fechadas contam tempo.
func duracaoHoras(s *models.SessaoTrabalho) (float64, bool) {
	if s.HoraSaida == nil {
		return 0, false
	}
	return s.HoraSaida.Sub(s.HoraInicio).Hours(), true
}

// CalcularKPIs resume as sessões de trabalho: horas totais, horas e custo de
// mão de obra por posto, horas por operador e duração média por operação.
func CalcularKPIs(sessoes []models.SessaoTrabalho) *ResumoKPI {
	resumo := &ResumoKPI{CustoMaoDeObra: decimal.Zero}

	porPosto := map[uint]*TempoPosto{}
	porOperador := map[uint]*TempoOperador{}
	type acumuladorOp struct {
		totalMinutos float64
		execucoes    int
	}
	porOperacao := map[string]*acumuladorOp{}

	for i := range sessoes {
		s := &sessoes[i]
		horas, fechada := duracaoHoras(s)
		if !fechada {
			continue
		}
		resumo.HorasTotais += horas

		tp, ok := porPosto[s.PostoTrabalhoID]
		if !ok {
			tp = &TempoPosto{
				PostoID:   s.PostoTrabalhoID,
				Nome:      s.PostoTrabalho.Nome,
				CustoHora: s.PostoTrabalho.CustoHora,
				Custo:     decimal.Zero,
			}
			porPosto[s.PostoTrabalhoID] = tp
		}
		tp.Horas += horas

		to, ok := porOperador[s.OperadorID]
		if !ok {
			to = &TempoOperador{OperadorID: s.OperadorID, Nome: s.Operador.Nome}
			porOperador[s.OperadorID] = to
		}
		to.Horas += horas

		op, ok := porOperacao[s.Operacao]
		if !ok {
			op = &acumuladorOp{}
			porOperacao[s.Operacao] = op
		}
		op.totalMinutos += horas * 60
		op.execucoes++
	}

	for _, tp := range porPosto {
		tp.Custo = tp.CustoHora.Mul(decimal.NewFromFloat(tp.Horas)).Round(2)
		resumo.CustoMaoDeObra = resumo.CustoMaoDeObra.Add(tp.Custo)
		resumo.PorPosto = append(resumo.PorPosto, *tp)
	}
	sort.Slice(resumo.PorPosto, func(i, j int) bool { return resumo.PorPosto[i].Horas > resumo.PorPosto[j].Horas })

	for _, to := range porOperador {
		resumo.PorOperador = append(resumo.PorOperador, *to)
	}
	sort.Slice(resumo.PorOperador, func(i, j int) bool { return resumo.PorOperador[i].Horas > resumo.PorOperador[j].Horas })

	for operacao, acc := range porOperacao {
		resumo.MediaPorOperacao = append(resumo.MediaPorOperacao, OperacaoKPI{
			Operacao:     operacao,
			MediaMinutos: acc.totalMinutos / float64(acc.execucoes),
			Execucoes:    acc.execucoes,
		})
	}
	sort.Slice(resumo.MediaPorOperacao, func(i, j int) bool {
		return resumo.MediaPorOperacao[i].MediaMinutos > resumo.MediaPorOperacao[j].MediaMinutos
	})

	return resumo
}
